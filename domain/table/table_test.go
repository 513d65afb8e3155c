package table

import (
	"math"
	"testing"
)

func TestNewColumnClassifiesKinds(t *testing.T) {
	num := NewColumn("x", []string{"1", "2.5", "NA", "", "-3e2"})
	if !num.IsNumeric() {
		t.Fatalf("expected numeric column, got %s", num.Kind)
	}
	if !math.IsNaN(num.Values[2]) || !math.IsNaN(num.Values[3]) {
		t.Errorf("missing cells should be NaN, got %v", num.Values)
	}
	if num.Values[4] != -300 {
		t.Errorf("expected -300, got %v", num.Values[4])
	}

	cat := NewColumn("g", []string{"a", "1", "b"})
	if cat.IsNumeric() {
		t.Errorf("mixed column should be categorical")
	}

	empty := NewColumn("e", []string{"", "null", "None"})
	if empty.IsNumeric() {
		t.Errorf("all-missing column should be categorical")
	}
}

func TestFiniteDropsInfinities(t *testing.T) {
	c := NewColumn("x", []string{"1", "inf", "-Inf", "2", "nan"})
	got := c.Finite()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestValueCountsOrder(t *testing.T) {
	c := NewColumn("g", []string{"b", "a", "b", "c", "a", "b", ""})
	counts := c.ValueCounts()
	if len(counts) != 3 {
		t.Fatalf("expected 3 distinct values, got %d", len(counts))
	}
	if counts[0].Value != "b" || counts[0].Count != 3 {
		t.Errorf("expected b:3 first, got %+v", counts[0])
	}
	if counts[1].Value != "a" || counts[2].Value != "c" {
		t.Errorf("unexpected order %+v", counts)
	}
}

func TestTableLookupAndCompleteRows(t *testing.T) {
	tbl := New("t", []string{"a", "b"}, [][]string{
		{"1", "10"},
		{"2", ""},
		{"3", "30"},
	})

	if tbl.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Rows())
	}
	a, ok := tbl.Column("a")
	if !ok {
		t.Fatal("column a not found")
	}
	b, _ := tbl.Column("b")
	if _, ok := tbl.Column("missing"); ok {
		t.Error("unexpected lookup hit")
	}

	rows := CompleteRows(a, b)
	if len(rows[0]) != 2 || rows[0][1] != 3 || rows[1][1] != 30 {
		t.Errorf("listwise deletion failed: %v", rows)
	}
}
