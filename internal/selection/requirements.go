package selection

import (
	"fmt"

	"statdash/domain/table"
)

var requirements = map[string]Requirement{
	"one_sample_ttest": Exactly(1, table.KindNumeric),
	"paired_ttest":     Exactly(2, table.KindNumeric),
	"welch_ttest":      Exactly(2, table.KindNumeric),
	"chi_square":       Exactly(2, table.KindAny),
	"correlation":      Exactly(2, table.KindNumeric),
	"covariance":       AtLeast(2, table.KindNumeric),
	"descriptive":      AtLeast(1, table.KindNumeric),
	"normality":        AtLeast(1, table.KindNumeric),
	"charts":           AtLeast(1, table.KindAny),
	"report":           AtLeast(1, table.KindAny),
}

// RequirementFor returns the column constraint of a named procedure
func RequirementFor(procedure string) (Requirement, error) {
	req, ok := requirements[procedure]
	if !ok {
		return Requirement{}, fmt.Errorf("unknown procedure %q", procedure)
	}
	return req, nil
}
