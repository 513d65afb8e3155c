package presentation

import (
	"fmt"

	"statdash/internal/analysis"
)

// ChartSpec declares one chart; the renderer resolves column names against the table.
//
// box and histogram draw every column in Columns. scatter and bar with Y set plot
// X against Y. line plots X against the row index, keeping the first Limit values
// when Limit > 0. pie, and bar with Counts set, draw the value counts of X.
type ChartSpec struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Columns []string `json:"columns,omitempty"`
	X       string   `json:"x,omitempty"`
	Y       string   `json:"y,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Counts  bool     `json:"counts,omitempty"`
}

func chartsFor(a *analysis.Analysis, opts Options) []ChartSpec {
	cols := a.Columns
	switch a.Request.Procedure {
	case analysis.ProcOneSampleTTest:
		return []ChartSpec{box(fmt.Sprintf("Normality Test for %s", cols[0]), cols...)}

	case analysis.ProcPairedTTest:
		return []ChartSpec{box("Normality Test for Paired Variables", cols...)}

	case analysis.ProcWelchTTest:
		return []ChartSpec{box("Box Plots of the Selected Variables", cols...)}

	case analysis.ProcCorrelation:
		return []ChartSpec{
			box("Normality Testing", cols...),
			scatter(cols[0], cols[1], "Correlation Analysis"),
		}

	case analysis.ProcCovariance:
		x, y := cols[0], cols[1]
		if a.Request.SwapAxes {
			x, y = y, x
		}
		return []ChartSpec{scatter(x, y, fmt.Sprintf("Covariance between %s and %s", x, y))}

	case analysis.ProcDescriptive, analysis.ProcNormality:
		specs := make([]ChartSpec, 0, len(cols)+1)
		for _, c := range cols {
			specs = append(specs, box(fmt.Sprintf("Box Plot for %s", c), c))
		}
		return append(specs, box("Combined Box Plots for Normality Check", cols...))

	case analysis.ProcCharts:
		return selectedCharts(cols, a.Request.Charts)

	case analysis.ProcReport:
		return ReportCharts(cols, opts.ReportHead)
	}
	return nil
}

// selectedCharts builds the charts ticked by the user, in menu order
func selectedCharts(cols, kinds []string) []ChartSpec {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	var specs []ChartSpec
	for _, kind := range analysis.ChartKinds {
		if !want[kind] {
			continue
		}
		switch kind {
		case analysis.ChartScatter:
			for i := 0; i < len(cols); i++ {
				for j := i + 1; j < len(cols); j++ {
					specs = append(specs, scatter(cols[i], cols[j], fmt.Sprintf("%s vs %s", cols[j], cols[i])))
				}
			}
		case analysis.ChartBar:
			if len(cols) >= 2 {
				specs = append(specs, ChartSpec{
					Kind:  analysis.ChartBar,
					Title: fmt.Sprintf("%s Bar Chart", cols[0]),
					X:     cols[0],
					Y:     cols[1],
				})
			} else {
				specs = append(specs, countsBar(cols[0], fmt.Sprintf("%s Bar Chart", cols[0])))
			}
		case analysis.ChartPie:
			for _, c := range cols {
				specs = append(specs, pie(c, fmt.Sprintf("%s Pie Chart", c)))
			}
		case analysis.ChartLine:
			for _, c := range cols {
				specs = append(specs, line(c, fmt.Sprintf("%s Line Chart", c), 0))
			}
		case analysis.ChartBox:
			for _, c := range cols {
				specs = append(specs, box(fmt.Sprintf("%s Boxplot", c), c))
			}
		case analysis.ChartHistogram:
			for _, c := range cols {
				specs = append(specs, ChartSpec{Kind: analysis.ChartHistogram, Title: fmt.Sprintf("%s Histogram", c), Columns: []string{c}})
			}
		}
	}
	return specs
}

// ReportCharts lays out the report grid: per column a line of the first head values,
// a pie and a bar of value counts.
func ReportCharts(cols []string, head int) []ChartSpec {
	if head <= 0 {
		head = 10
	}
	specs := make([]ChartSpec, 0, 3*len(cols))
	for _, c := range cols {
		specs = append(specs,
			line(c, fmt.Sprintf("Line Chart for %s", c), head),
			pie(c, fmt.Sprintf("Pie Chart for %s", c)),
			countsBar(c, fmt.Sprintf("Bar Chart for %s", c)),
		)
	}
	return specs
}

func box(title string, cols ...string) ChartSpec {
	return ChartSpec{Kind: analysis.ChartBox, Title: title, Columns: append([]string(nil), cols...)}
}

func scatter(x, y, title string) ChartSpec {
	return ChartSpec{Kind: analysis.ChartScatter, Title: title, X: x, Y: y}
}

func pie(col, title string) ChartSpec {
	return ChartSpec{Kind: analysis.ChartPie, Title: title, X: col, Counts: true}
}

func countsBar(col, title string) ChartSpec {
	return ChartSpec{Kind: analysis.ChartBar, Title: title, X: col, Counts: true}
}

func line(col, title string, limit int) ChartSpec {
	return ChartSpec{Kind: analysis.ChartLine, Title: title, X: col, Limit: limit}
}
