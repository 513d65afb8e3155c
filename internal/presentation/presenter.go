// Package presentation turns computed analyses into display text, summary tables
// and declarative chart descriptions. Nothing here computes statistics.
package presentation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"statdash/internal/analysis"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Options tunes presentation output
type Options struct {
	ReportHead int // leading values drawn in report line charts; 0 means 10
}

// SummaryTable is a statistic-by-column grid
type SummaryTable struct {
	Headers []string     `json:"headers"`
	Rows    []SummaryRow `json:"rows"`
}

// SummaryRow is one statistic across the selected columns
type SummaryRow struct {
	Statistic string   `json:"statistic"`
	Values    []string `json:"values"`
}

// Presentation is everything the UI shows for one analysis
type Presentation struct {
	Title       string        `json:"title"`
	Procedure   string        `json:"procedure"`
	Columns     []string      `json:"columns"`
	Markdown    string        `json:"markdown"`
	HTML        string        `json:"html"`
	Summary     *SummaryTable `json:"summary,omitempty"`
	Charts      []ChartSpec   `json:"charts"`
	Warnings    []string      `json:"warnings,omitempty"`
	Significant *bool         `json:"significant,omitempty"`
}

// Present formats an analysis for display
func Present(a *analysis.Analysis, opts Options) *Presentation {
	if opts.ReportHead <= 0 {
		opts.ReportHead = 10
	}

	p := &Presentation{
		Title:     a.Request.Procedure.Label(),
		Procedure: string(a.Request.Procedure),
		Columns:   a.Columns,
		Warnings:  a.Warnings,
		Charts:    chartsFor(a, opts),
	}

	var md strings.Builder
	switch res := a.Primary.(type) {
	case *analysis.TTestResult:
		writeTTest(&md, res)
		p.Significant = boolPtr(res.P < analysis.Alpha)
	case *analysis.ChiSquareResult:
		writeChiSquare(&md, res)
		p.Significant = boolPtr(res.P < analysis.Alpha)
	case *analysis.CorrelationResult:
		writeCorrelation(&md, res)
		p.Significant = boolPtr(res.P < analysis.Alpha)
	case *analysis.CovarianceResult:
		writeCovariance(&md, res, a.Request.SwapAxes)
	}

	writeDescriptives(&md, a.Descriptives)
	writeNormality(&md, a.Normality, a.Request.Procedure)

	if a.Request.Procedure == analysis.ProcCharts || a.Request.Procedure == analysis.ProcReport {
		fmt.Fprintf(&md, "Charts for %s.\n", strings.Join(a.Columns, ", "))
	}

	p.Markdown = md.String()
	p.HTML = RenderHTML(p.Markdown)
	if len(a.Descriptives) > 0 {
		p.Summary = summaryTable(a.Descriptives)
	}
	return p
}

// RenderHTML converts markdown text to HTML. Raw HTML in the input is dropped
// since column names come from uploaded files.
func RenderHTML(md string) string {
	ps := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML})
	return string(markdown.ToHTML([]byte(md), ps, renderer))
}

func writeTTest(md *strings.Builder, r *analysis.TTestResult) {
	switch r.Procedure {
	case analysis.ProcOneSampleTTest:
		fmt.Fprintf(md, "### One-Sample T-Test for %s with μ=%s\n\n", r.Columns[0], Num(r.Mu, 4))
	case analysis.ProcPairedTTest:
		fmt.Fprintf(md, "### Paired Two-Sample T-Test for %s and %s\n\n", r.Columns[0], r.Columns[1])
	default:
		fmt.Fprintf(md, "### Unpaired T-Test (Welch) for %s and %s\n\n", r.Columns[0], r.Columns[1])
	}

	fmt.Fprintf(md, "- T-statistic: %s\n", Num(r.T, 4))
	fmt.Fprintf(md, "- P-value: %s\n", Num(r.P, 5))
	fmt.Fprintf(md, "- Degrees of freedom: %s\n\n", Num(r.DF, 2))
	md.WriteString(InterpretTTest(r) + "\n\n")
}

// InterpretTTest states the fixed-threshold conclusion of a t-test
func InterpretTTest(r *analysis.TTestResult) string {
	significant := r.P < analysis.Alpha
	switch r.Procedure {
	case analysis.ProcOneSampleTTest:
		if significant {
			return fmt.Sprintf("The mean of %s is significantly different from %s.", r.Columns[0], Num(r.Mu, 4))
		}
		return fmt.Sprintf("No significant difference observed between the mean of %s and %s.", r.Columns[0], Num(r.Mu, 4))
	case analysis.ProcPairedTTest:
		if significant {
			return "The mean difference between the paired variables is significant."
		}
		return "No significant difference observed between the paired variables."
	default:
		if significant {
			return "The means of the two selected variables are significantly different."
		}
		return "No significant difference observed between the means of the two selected variables."
	}
}

func writeChiSquare(md *strings.Builder, r *analysis.ChiSquareResult) {
	md.WriteString("### Chi-Square Test of Independence\n\n")
	fmt.Fprintf(md, "- Chi-square statistic: %s\n", Num(r.Chi2, 4))
	fmt.Fprintf(md, "- P-value: %s\n", Num(r.P, 4))
	fmt.Fprintf(md, "- Degrees of freedom: %d\n", r.DF)
	if r.Yates {
		md.WriteString("- Yates' continuity correction applied\n")
	}
	md.WriteString("\n**Expected frequencies**\n\n")
	writeMatrix(md, r.Expected, r.RowLabels, r.ColLabels, 3)

	if r.P < analysis.Alpha {
		md.WriteString("\nThe variables are not independent (p < 0.05).\n\n")
	} else {
		md.WriteString("\nNo evidence against independence of the variables (p ≥ 0.05).\n\n")
	}
}

func writeCorrelation(md *strings.Builder, r *analysis.CorrelationResult) {
	fmt.Fprintf(md, "### Correlation Analysis of %s and %s\n\n", r.Columns[0], r.Columns[1])
	fmt.Fprintf(md, "- Correlation Coefficient: %s\n", Num(r.R, 4))
	fmt.Fprintf(md, "- P-value: %s\n", Num(r.P, 5))
	fmt.Fprintf(md, "- Complete rows: %d\n\n", r.N)
	md.WriteString(InterpretCorrelation(r) + "\n\n")
}

// InterpretCorrelation describes the strength and direction of r
func InterpretCorrelation(r *analysis.CorrelationResult) string {
	abs := math.Abs(r.R)
	strength := "weak"
	switch {
	case abs >= 0.7:
		strength = "strong"
	case abs >= 0.3:
		strength = "moderate"
	}
	direction := "positive"
	if r.R < 0 {
		direction = "negative"
	}
	sig := "statistically significant"
	if r.P >= analysis.Alpha {
		sig = "not statistically significant"
	}
	return fmt.Sprintf("There is a %s %s correlation (%s).", strength, direction, sig)
}

func writeCovariance(md *strings.Builder, r *analysis.CovarianceResult, swap bool) {
	i, j := 0, 1
	if swap {
		i, j = 1, 0
	}
	fmt.Fprintf(md, "### Covariance Analysis\n\n")
	fmt.Fprintf(md, "The Covariance between %s and %s is: %s\n\n", r.Columns[i], r.Columns[j], Num(r.Between(i, j), 4))
	if len(r.Columns) > 2 {
		md.WriteString("**Covariance matrix**\n\n")
		writeMatrix(md, r.Matrix, r.Columns, r.Columns, 4)
		md.WriteString("\n")
	}
}

func writeDescriptives(md *strings.Builder, ds []*analysis.DescriptiveResult) {
	for _, d := range ds {
		fmt.Fprintf(md, "**Descriptive Statistics of %s:**\n\n", d.Column)
		fmt.Fprintf(md, "- Mean = %s\n", Num(d.Mean, 4))
		fmt.Fprintf(md, "- Median = %s\n", Num(d.Median, 4))
		fmt.Fprintf(md, "- Mode = %s\n", formatList(d.Modes))
		fmt.Fprintf(md, "- Skewness = %s\n", Num(d.Skewness, 4))
		fmt.Fprintf(md, "- Kurtosis = %s\n", Num(d.Kurtosis, 4))
		fmt.Fprintf(md, "- Standard Deviation = %s\n", Num(d.StdDev, 4))
		fmt.Fprintf(md, "- Quartiles = [%s, %s, %s]\n\n", Num(d.Q1, 4), Num(d.Median, 4), Num(d.Q3, 4))
	}
}

func writeNormality(md *strings.Builder, ns []*analysis.NormalityResult, proc analysis.Procedure) {
	if len(ns) == 0 {
		return
	}
	if proc == analysis.ProcNormality || proc == analysis.ProcDescriptive {
		md.WriteString("### Normality Test Results\n\n")
	}
	for _, n := range ns {
		fmt.Fprintf(md, "- Shapiro-Wilk Test for Normality (%s): p-value=%s. %s\n", n.Column, Num(n.P, 5), InterpretNormality(n))
	}
	md.WriteString("\n")
}

// InterpretNormality states whether the column looks normally distributed
func InterpretNormality(n *analysis.NormalityResult) string {
	if n.Normal {
		return fmt.Sprintf("The variable %s appears to be normally distributed.", n.Column)
	}
	return fmt.Sprintf("The variable %s does not appear to be normally distributed.", n.Column)
}

func summaryTable(ds []*analysis.DescriptiveResult) *SummaryTable {
	t := &SummaryTable{Headers: []string{"Statistic"}}
	for _, d := range ds {
		t.Headers = append(t.Headers, d.Column)
	}

	row := func(name string, f func(*analysis.DescriptiveResult) string) {
		r := SummaryRow{Statistic: name}
		for _, d := range ds {
			r.Values = append(r.Values, f(d))
		}
		t.Rows = append(t.Rows, r)
	}
	row("Count", func(d *analysis.DescriptiveResult) string { return strconv.Itoa(d.N) })
	row("Mean", func(d *analysis.DescriptiveResult) string { return Num(d.Mean, 4) })
	row("Median", func(d *analysis.DescriptiveResult) string { return Num(d.Median, 4) })
	row("Mode", func(d *analysis.DescriptiveResult) string { return Num(d.Mode, 4) })
	row("Std. deviation", func(d *analysis.DescriptiveResult) string { return Num(d.StdDev, 4) })
	row("Skewness", func(d *analysis.DescriptiveResult) string { return Num(d.Skewness, 4) })
	row("Kurtosis", func(d *analysis.DescriptiveResult) string { return Num(d.Kurtosis, 4) })
	row("Min", func(d *analysis.DescriptiveResult) string { return Num(d.Min, 4) })
	row("25%", func(d *analysis.DescriptiveResult) string { return Num(d.Q1, 4) })
	row("50%", func(d *analysis.DescriptiveResult) string { return Num(d.Median, 4) })
	row("75%", func(d *analysis.DescriptiveResult) string { return Num(d.Q3, 4) })
	row("Max", func(d *analysis.DescriptiveResult) string { return Num(d.Max, 4) })
	return t
}

func writeMatrix(md *strings.Builder, m [][]float64, rowLabels, colLabels []string, prec int) {
	if len(m) == 0 {
		return
	}
	md.WriteString("| |")
	for j := range m[0] {
		fmt.Fprintf(md, " %s |", label(colLabels, j))
	}
	md.WriteString("\n|---|")
	for range m[0] {
		md.WriteString("---|")
	}
	md.WriteString("\n")
	for i, row := range m {
		fmt.Fprintf(md, "| %s |", label(rowLabels, i))
		for _, v := range row {
			fmt.Fprintf(md, " %s |", Num(v, prec))
		}
		md.WriteString("\n")
	}
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(i + 1)
}

// Num formats v with prec decimals; undefined values print as "n/a"
func Num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func boolPtr(b bool) *bool { return &b }
