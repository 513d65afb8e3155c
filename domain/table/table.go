// Package table holds the in-memory tabular model produced by the readers and
// consumed by the selector, the statistical procedures and the chart renderers.
package table

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind classifies a column by the values it holds
type Kind string

const (
	KindAny         Kind = ""
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// missingTokens are cell values read as missing (compared case-insensitively)
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// IsMissing reports whether a raw cell denotes a missing value
func IsMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Column is a named column with its raw cells and their numeric reading.
// Values[i] is NaN when Raw[i] is missing or not a number.
type Column struct {
	Name   string
	Kind   Kind
	Raw    []string
	Values []float64
}

// NewColumn classifies raw cells into a Column
func NewColumn(name string, raw []string) *Column {
	col := &Column{
		Name:   name,
		Raw:    raw,
		Values: make([]float64, len(raw)),
	}

	present := 0
	numeric := true
	for i, cell := range raw {
		if IsMissing(cell) {
			col.Values[i] = math.NaN()
			continue
		}
		present++
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			numeric = false
			col.Values[i] = math.NaN()
			continue
		}
		col.Values[i] = v
	}

	if numeric && present > 0 {
		col.Kind = KindNumeric
	} else {
		col.Kind = KindCategorical
	}
	return col
}

// Len returns the number of rows
func (c *Column) Len() int { return len(c.Raw) }

// IsNumeric reports whether every present cell parses as a number
func (c *Column) IsNumeric() bool { return c.Kind == KindNumeric }

// Finite returns the column's finite values in row order. Infinities count as missing.
func (c *Column) Finite() []float64 {
	return FiniteValues(c.Values)
}

// Head returns up to n leading values, keeping missing cells as NaN
func (c *Column) Head(n int) []float64 {
	if n > len(c.Values) {
		n = len(c.Values)
	}
	out := make([]float64, n)
	copy(out, c.Values[:n])
	return out
}

// ValueCount is one distinct value and its frequency
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts returns distinct non-missing raw values by descending frequency.
// Ties keep first-seen order.
func (c *Column) ValueCounts() []ValueCount {
	counts := make(map[string]int)
	var order []string
	for _, cell := range c.Raw {
		if IsMissing(cell) {
			continue
		}
		key := strings.TrimSpace(cell)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	out := make([]ValueCount, len(order))
	for i, key := range order {
		out[i] = ValueCount{Value: key, Count: counts[key]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Table is an ordered set of equal-length named columns
type Table struct {
	Name    string
	Columns []*Column
	index   map[string]int
}

// New builds a Table from a header and row-major records. Callers guarantee
// every record has len(header) fields.
func New(name string, header []string, records [][]string) *Table {
	cols := make([][]string, len(header))
	for j := range header {
		cols[j] = make([]string, len(records))
	}
	for i, rec := range records {
		for j := range header {
			cols[j][i] = rec[j]
		}
	}

	t := &Table{Name: name, index: make(map[string]int, len(header))}
	for j, h := range header {
		t.Columns = append(t.Columns, NewColumn(h, cols[j]))
		t.index[h] = j
	}
	return t
}

// Column looks a column up by name
func (t *Table) Column(name string) (*Column, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[j], true
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericNames returns the names of numeric columns in order
func (t *Table) NumericNames() []string {
	var names []string
	for _, c := range t.Columns {
		if c.IsNumeric() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Rows returns the number of data rows
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Preview returns up to n rows of raw cells for display
func (t *Table) Preview(n int) [][]string {
	if n > t.Rows() {
		n = t.Rows()
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Raw[i]
		}
		rows[i] = row
	}
	return rows
}

// CompleteRows returns the values of cols restricted to rows where every
// column holds a finite value.
func CompleteRows(cols ...*Column) [][]float64 {
	vals := make([][]float64, len(cols))
	for i, c := range cols {
		vals[i] = c.Values
	}
	return CompleteValues(vals...)
}

// CompleteValues is CompleteRows over plain slices. Rows past the shortest
// slice are ignored.
func CompleteValues(vals ...[]float64) [][]float64 {
	out := make([][]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	n := len(vals[0])
	for _, v := range vals[1:] {
		if len(v) < n {
			n = len(v)
		}
	}
	for i := 0; i < n; i++ {
		ok := true
		for _, v := range vals {
			if !IsFinite(v[i]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for j, v := range vals {
			out[j] = append(out[j], v[i])
		}
	}
	return out
}

// FiniteValues drops NaN and infinite entries, keeping order
func FiniteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
