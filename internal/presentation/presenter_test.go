package presentation

import (
	"math"
	"strings"
	"testing"

	"statdash/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresentWelch(t *testing.T) {
	a := &analysis.Analysis{
		Request: analysis.Request{Procedure: analysis.ProcWelchTTest, Columns: []string{"x", "y"}},
		Columns: []string{"x", "y"},
		Primary: &analysis.TTestResult{
			Procedure: analysis.ProcWelchTTest,
			Columns:   []string{"x", "y"},
			T:         -5,
			P:         0.00105,
			DF:        8,
		},
		Normality: []*analysis.NormalityResult{
			{Column: "x", W: 0.98, P: 0.9, Normal: true},
			{Column: "y", W: 0.7, P: 0.01, Normal: false},
		},
	}

	p := Present(a, Options{})
	assert.Contains(t, p.Markdown, "T-statistic: -5.0000")
	assert.Contains(t, p.Markdown, "P-value: 0.00105")
	assert.Contains(t, p.Markdown, "The means of the two selected variables are significantly different.")
	assert.Contains(t, p.Markdown, "The variable x appears to be normally distributed.")
	assert.Contains(t, p.Markdown, "The variable y does not appear to be normally distributed.")
	assert.Contains(t, p.HTML, "<li>")
	require.NotNil(t, p.Significant)
	assert.True(t, *p.Significant)

	require.Len(t, p.Charts, 1)
	assert.Equal(t, analysis.ChartBox, p.Charts[0].Kind)
	assert.Equal(t, []string{"x", "y"}, p.Charts[0].Columns)
}

func TestInterpretTTestNotSignificant(t *testing.T) {
	r := &analysis.TTestResult{Procedure: analysis.ProcWelchTTest, Columns: []string{"x", "y"}, P: 0.3}
	assert.Equal(t, "No significant difference observed between the means of the two selected variables.", InterpretTTest(r))

	one := &analysis.TTestResult{Procedure: analysis.ProcOneSampleTTest, Columns: []string{"x"}, P: 0.01, Mu: 2}
	assert.Contains(t, InterpretTTest(one), "significantly different from 2.0000")
}

func TestPresentChiSquareMatrix(t *testing.T) {
	a := &analysis.Analysis{
		Request: analysis.Request{Procedure: analysis.ProcChiSquare, Columns: []string{"g", "h"}},
		Columns: []string{"g", "h"},
		Primary: &analysis.ChiSquareResult{
			Chi2:      0,
			P:         1,
			DF:        1,
			Expected:  [][]float64{{10, 10}, {10, 10}},
			RowLabels: []string{"a", "b"},
			ColLabels: []string{"no", "yes"},
			Yates:     true,
		},
	}
	p := Present(a, Options{})
	assert.Contains(t, p.Markdown, "Chi-square statistic: 0.0000")
	assert.Contains(t, p.Markdown, "P-value: 1.0000")
	assert.Contains(t, p.Markdown, "| a | 10.000 | 10.000 |")
	assert.Contains(t, p.HTML, "<table>")
	assert.Empty(t, p.Charts)
}

func TestPresentDescriptiveSummary(t *testing.T) {
	a := &analysis.Analysis{
		Request: analysis.Request{Procedure: analysis.ProcDescriptive, Columns: []string{"x"}},
		Columns: []string{"x"},
		Descriptives: []*analysis.DescriptiveResult{{
			Column: "x", N: 1, Mean: 3, Median: 3, Mode: 3, Modes: []float64{3},
			StdDev: math.NaN(), Skewness: math.NaN(), Kurtosis: math.NaN(), Q1: 3, Q3: 3, Min: 3, Max: 3,
		}},
	}
	p := Present(a, Options{})
	require.NotNil(t, p.Summary)
	assert.Equal(t, []string{"Statistic", "x"}, p.Summary.Headers)
	assert.Equal(t, "Std. deviation", p.Summary.Rows[4].Statistic)
	assert.Equal(t, "n/a", p.Summary.Rows[4].Values[0])
	assert.Contains(t, p.Markdown, "Mode = [3]")

	// one box per column plus the combined box
	require.Len(t, p.Charts, 2)
	assert.Equal(t, "Combined Box Plots for Normality Check", p.Charts[1].Title)
}

func TestCovarianceSwapAxes(t *testing.T) {
	a := &analysis.Analysis{
		Request: analysis.Request{Procedure: analysis.ProcCovariance, Columns: []string{"x", "y"}, SwapAxes: true},
		Columns: []string{"x", "y"},
		Primary: &analysis.CovarianceResult{Columns: []string{"x", "y"}, Matrix: [][]float64{{2.5, 1.5}, {1.5, 1.5}}, N: 5},
	}
	p := Present(a, Options{})
	require.Len(t, p.Charts, 1)
	assert.Equal(t, "y", p.Charts[0].X)
	assert.Equal(t, "x", p.Charts[0].Y)
	assert.Contains(t, p.Markdown, "The Covariance between y and x is: 1.5000")
}

func TestSelectedCharts(t *testing.T) {
	a := &analysis.Analysis{
		Request: analysis.Request{
			Procedure: analysis.ProcCharts,
			Columns:   []string{"a", "b", "c"},
			Charts:    []string{analysis.ChartLine, analysis.ChartScatter, analysis.ChartBar},
		},
		Columns: []string{"a", "b", "c"},
	}
	specs := Present(a, Options{}).Charts

	kinds := make([]string, len(specs))
	for i, s := range specs {
		kinds[i] = s.Kind
	}
	// three scatter pairs, one bar of b against a, three lines
	assert.Equal(t, []string{"scatter", "scatter", "scatter", "bar", "line", "line", "line"}, kinds)
	assert.Equal(t, "a", specs[3].X)
	assert.Equal(t, "b", specs[3].Y)
}

func TestReportCharts(t *testing.T) {
	specs := ReportCharts([]string{"a", "b"}, 0)
	require.Len(t, specs, 6)
	assert.Equal(t, analysis.ChartLine, specs[0].Kind)
	assert.Equal(t, 10, specs[0].Limit)
	assert.True(t, specs[1].Counts)
	assert.True(t, specs[2].Counts)
	assert.Equal(t, "Bar Chart for b", specs[5].Title)
}

func TestRenderHTML(t *testing.T) {
	html := RenderHTML("**bold** text")
	assert.True(t, strings.Contains(html, "<strong>bold</strong>"))
}
