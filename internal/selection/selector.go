// Package selection validates a user's column choice against a procedure's
// arity and column-kind constraints.
package selection

import (
	"fmt"

	"statdash/domain/core"
	"statdash/domain/table"
)

// Requirement bounds how many columns a procedure takes and what kind they must be.
// Max of zero means no upper bound.
type Requirement struct {
	Min  int
	Max  int
	Kind table.Kind
}

// Exactly requires n columns of the given kind
func Exactly(n int, kind table.Kind) Requirement {
	return Requirement{Min: n, Max: n, Kind: kind}
}

// AtLeast requires n or more columns of the given kind
func AtLeast(n int, kind table.Kind) Requirement {
	return Requirement{Min: n, Kind: kind}
}

func (r Requirement) String() string {
	kind := "any"
	if r.Kind != table.KindAny {
		kind = string(r.Kind)
	}
	switch {
	case r.Max == r.Min:
		return fmt.Sprintf("exactly %d %s column(s)", r.Min, kind)
	case r.Max == 0:
		return fmt.Sprintf("at least %d %s column(s)", r.Min, kind)
	default:
		return fmt.Sprintf("between %d and %d %s columns", r.Min, r.Max, kind)
	}
}

// Allows reports whether n columns satisfy the count bounds
func (r Requirement) Allows(n int) bool {
	return n >= r.Min && (r.Max == 0 || n <= r.Max)
}

// Select resolves names against t in the given order and checks them against req.
func Select(t *table.Table, names []string, req Requirement) ([]*table.Column, error) {
	if !req.Allows(len(names)) {
		return nil, core.NewSelectionError(core.ReasonWrongCount, "",
			fmt.Sprintf("selected %d column(s), need %s", len(names), req))
	}

	seen := make(map[string]bool, len(names))
	cols := make([]*table.Column, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, core.NewSelectionError(core.ReasonDuplicate, name, "column selected more than once")
		}
		seen[name] = true

		col, ok := t.Column(name)
		if !ok {
			return nil, core.NewSelectionError(core.ReasonUnknownColumn, name, "no such column")
		}
		if req.Kind == table.KindNumeric && !col.IsNumeric() {
			return nil, core.NewSelectionError(core.ReasonNonNumeric, name, "column is not numeric")
		}
		cols = append(cols, col)
	}
	return cols, nil
}
