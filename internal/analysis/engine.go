package analysis

import (
	"fmt"
	"time"

	"statdash/domain/core"
	"statdash/domain/table"
	"statdash/internal"
	"statdash/internal/selection"
)

// Engine validates a request against a table and runs the matching procedure
type Engine struct {
	logger *internal.Logger
	now    func() time.Time
}

// NewEngine creates an engine logging through logger (DefaultLogger when nil)
func NewEngine(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{logger: logger, now: time.Now}
}

// Run selects the requested columns and computes the analysis. Per-column normality
// checks and summaries accompany the t-tests as well as the descriptive and
// normality procedures; failures in those side checks become warnings.
func (e *Engine) Run(t *table.Table, req Request) (*Analysis, error) {
	if t == nil {
		return nil, core.ErrNoData
	}
	if !req.Procedure.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownProcedure, req.Procedure)
	}
	reqs, err := selection.RequirementFor(string(req.Procedure))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnknownProcedure, err)
	}
	cols, err := selection.Select(t, req.Columns, reqs)
	if err != nil {
		return nil, err
	}

	start := e.now()
	a := &Analysis{
		Request: req,
		Columns: append([]string(nil), req.Columns...),
	}

	switch req.Procedure {
	case ProcOneSampleTTest:
		res, err := OneSampleTTest(cols[0].Values, req.Mu)
		if err != nil {
			return nil, err
		}
		res.Columns = a.Columns
		a.Primary = res
		e.attachSummaries(a, cols)

	case ProcPairedTTest:
		res, err := PairedTTest(cols[0].Values, cols[1].Values)
		if err != nil {
			return nil, err
		}
		res.Columns = a.Columns
		a.Primary = res
		e.attachSummaries(a, cols)

	case ProcWelchTTest:
		res, err := WelchTTest(cols[0].Values, cols[1].Values)
		if err != nil {
			return nil, err
		}
		res.Columns = a.Columns
		a.Primary = res
		e.attachSummaries(a, cols)

	case ProcChiSquare:
		res, err := ChiSquareFromColumns(cols[0], cols[1])
		if err != nil {
			return nil, err
		}
		a.Primary = res

	case ProcCorrelation:
		res, err := Correlation(cols[0].Values, cols[1].Values)
		if err != nil {
			return nil, err
		}
		res.Columns = [2]string{cols[0].Name, cols[1].Name}
		a.Primary = res
		e.attachNormality(a, cols)

	case ProcCovariance:
		values := make([][]float64, len(cols))
		for i, c := range cols {
			values[i] = c.Values
		}
		res, err := Covariance(values...)
		if err != nil {
			return nil, err
		}
		res.Columns = a.Columns
		a.Primary = res

	case ProcDescriptive:
		for _, c := range cols {
			d, err := Describe(c.Values)
			if err != nil {
				return nil, err
			}
			d.Column = c.Name
			a.Descriptives = append(a.Descriptives, d)
		}
		e.attachNormality(a, cols)

	case ProcNormality:
		for _, c := range cols {
			nr, err := ShapiroWilk(c.Values)
			if err != nil {
				return nil, err
			}
			nr.Column = c.Name
			a.Normality = append(a.Normality, nr)
		}
		e.attachDescriptives(a, cols)

	case ProcCharts, ProcReport:
		// chart-only procedures need nothing beyond a valid selection
	}

	a.ComputedAt = e.now()
	a.Duration = a.ComputedAt.Sub(start)
	e.logger.Debug("[Engine] %s on %v completed in %s", req.Procedure, req.Columns, a.Duration)
	return a, nil
}

func (e *Engine) attachSummaries(a *Analysis, cols []*table.Column) {
	e.attachDescriptives(a, cols)
	e.attachNormality(a, cols)
}

func (e *Engine) attachDescriptives(a *Analysis, cols []*table.Column) {
	for _, c := range cols {
		d, err := Describe(c.Values)
		if err != nil {
			a.Warnings = append(a.Warnings, fmt.Sprintf("Summary for %s unavailable: %v", c.Name, err))
			continue
		}
		d.Column = c.Name
		a.Descriptives = append(a.Descriptives, d)
	}
}

func (e *Engine) attachNormality(a *Analysis, cols []*table.Column) {
	for _, c := range cols {
		nr, err := ShapiroWilk(c.Values)
		if err != nil {
			a.Warnings = append(a.Warnings, fmt.Sprintf("Normality check for %s unavailable: %v", c.Name, err))
			continue
		}
		nr.Column = c.Name
		a.Normality = append(a.Normality, nr)
	}
}
