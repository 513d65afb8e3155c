package selection

import (
	"errors"
	"testing"

	"statdash/domain/core"
	"statdash/domain/table"
)

func sampleTable() *table.Table {
	return table.New("t", []string{"a", "b", "c", "g"}, [][]string{
		{"1", "2", "3", "x"},
		{"4", "5", "6", "y"},
	})
}

func reasonOf(t *testing.T, err error) core.SelectionReason {
	t.Helper()
	var serr *core.SelectionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SelectionError, got %v", err)
	}
	return serr.Reason
}

// TestSelectWrongCount checks that a two-column requirement rejects one and three columns
func TestSelectWrongCount(t *testing.T) {
	tbl := sampleTable()
	req := Exactly(2, table.KindNumeric)

	for _, names := range [][]string{{"a"}, {"a", "b", "c"}} {
		cols, err := Select(tbl, names, req)
		if cols != nil {
			t.Errorf("expected no columns for %v", names)
		}
		if r := reasonOf(t, err); r != core.ReasonWrongCount {
			t.Errorf("expected wrong_count for %v, got %s", names, r)
		}
	}
}

func TestSelectReasons(t *testing.T) {
	tbl := sampleTable()

	_, err := Select(tbl, []string{"a", "zzz"}, Exactly(2, table.KindNumeric))
	if r := reasonOf(t, err); r != core.ReasonUnknownColumn {
		t.Errorf("expected unknown_column, got %s", r)
	}

	_, err = Select(tbl, []string{"a", "g"}, Exactly(2, table.KindNumeric))
	if r := reasonOf(t, err); r != core.ReasonNonNumeric {
		t.Errorf("expected non_numeric, got %s", r)
	}

	_, err = Select(tbl, []string{"a", "a"}, Exactly(2, table.KindNumeric))
	if r := reasonOf(t, err); r != core.ReasonDuplicate {
		t.Errorf("expected duplicate_column, got %s", r)
	}
}

func TestSelectKeepsOrder(t *testing.T) {
	cols, err := Select(sampleTable(), []string{"c", "a", "g"}, AtLeast(1, table.KindAny))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols[0].Name != "c" || cols[1].Name != "a" || cols[2].Name != "g" {
		t.Errorf("selection order not preserved: %s %s %s", cols[0].Name, cols[1].Name, cols[2].Name)
	}
}

func TestRequirementFor(t *testing.T) {
	req, err := RequirementFor("paired_ttest")
	if err != nil {
		t.Fatal(err)
	}
	if req.Min != 2 || req.Max != 2 || req.Kind != table.KindNumeric {
		t.Errorf("unexpected requirement %+v", req)
	}
	if _, err := RequirementFor("anova"); err == nil {
		t.Error("expected error for unknown procedure")
	}
	if !AtLeast(2, table.KindAny).Allows(10) {
		t.Error("AtLeast should be unbounded above")
	}
}
