// Package analysis holds the statistical procedures offered by the dashboard and
// the engine that dispatches a user's request to them.
package analysis

import (
	"slices"
	"time"
)

// Procedure names one user-facing action
type Procedure string

const (
	ProcOneSampleTTest Procedure = "one_sample_ttest"
	ProcPairedTTest    Procedure = "paired_ttest"
	ProcWelchTTest     Procedure = "welch_ttest"
	ProcChiSquare      Procedure = "chi_square"
	ProcCorrelation    Procedure = "correlation"
	ProcCovariance     Procedure = "covariance"
	ProcDescriptive    Procedure = "descriptive"
	ProcNormality      Procedure = "normality"
	ProcCharts         Procedure = "charts"
	ProcReport         Procedure = "report"
)

// Procedures lists every procedure in menu order
var Procedures = []Procedure{
	ProcOneSampleTTest,
	ProcPairedTTest,
	ProcWelchTTest,
	ProcChiSquare,
	ProcCorrelation,
	ProcCovariance,
	ProcDescriptive,
	ProcNormality,
	ProcCharts,
	ProcReport,
}

var procedureLabels = map[Procedure]string{
	ProcOneSampleTTest: "One-sample t-test",
	ProcPairedTTest:    "Paired t-test",
	ProcWelchTTest:     "Unpaired t-test (Welch)",
	ProcChiSquare:      "Chi-square test of independence",
	ProcCorrelation:    "Correlation analysis",
	ProcCovariance:     "Covariance analysis",
	ProcDescriptive:    "Descriptive statistics",
	ProcNormality:      "Normality check",
	ProcCharts:         "Chart selection",
	ProcReport:         "Data analysis report",
}

// Valid reports whether p is a known procedure
func (p Procedure) Valid() bool {
	_, ok := procedureLabels[p]
	return ok
}

// Label returns the human readable name
func (p Procedure) Label() string {
	if l, ok := procedureLabels[p]; ok {
		return l
	}
	return string(p)
}

// Chart kinds selectable for the charts procedure
const (
	ChartBox       = "box"
	ChartHistogram = "histogram"
	ChartScatter   = "scatter"
	ChartBar       = "bar"
	ChartPie       = "pie"
	ChartLine      = "line"
)

// ChartKinds lists the selectable chart kinds
var ChartKinds = []string{ChartScatter, ChartBar, ChartPie, ChartLine, ChartBox, ChartHistogram}

// Request is one user action: the procedure, its columns and options
type Request struct {
	Procedure Procedure `json:"procedure" yaml:"procedure"`
	Columns   []string  `json:"columns" yaml:"columns"`
	Mu        float64   `json:"mu,omitempty" yaml:"mu,omitempty"`
	Charts    []string  `json:"charts,omitempty" yaml:"charts,omitempty"`
	SwapAxes  bool      `json:"swap_axes,omitempty" yaml:"swap_axes,omitempty"`
}

// Equal reports whether two requests would produce the same analysis
func (r Request) Equal(o Request) bool {
	return r.Procedure == o.Procedure &&
		r.Mu == o.Mu &&
		r.SwapAxes == o.SwapAxes &&
		slices.Equal(r.Columns, o.Columns) &&
		slices.Equal(r.Charts, o.Charts)
}

// Result is the output of one statistical procedure
type Result interface {
	ProcedureName() Procedure
}

// TTestResult is the outcome of a one-sample, paired or Welch t-test
type TTestResult struct {
	Procedure Procedure
	Columns   []string
	T         float64
	P         float64
	DF        float64
	N1, N2    int
	Mu        float64   // hypothesised mean (one-sample) or mean difference (paired)
	Means     []float64 // sample means in column order
}

func (r *TTestResult) ProcedureName() Procedure { return r.Procedure }

// ChiSquareResult is the outcome of a chi-square test of independence
type ChiSquareResult struct {
	Chi2      float64
	P         float64
	DF        int
	Observed  [][]float64
	Expected  [][]float64
	RowLabels []string
	ColLabels []string
	Yates     bool
}

func (r *ChiSquareResult) ProcedureName() Procedure { return ProcChiSquare }

// CorrelationResult is the Pearson correlation between two columns
type CorrelationResult struct {
	Columns [2]string
	R       float64
	P       float64
	N       int
}

func (r *CorrelationResult) ProcedureName() Procedure { return ProcCorrelation }

// CovarianceResult is the sample covariance matrix of the selected columns
type CovarianceResult struct {
	Columns []string
	Matrix  [][]float64
	N       int
}

func (r *CovarianceResult) ProcedureName() Procedure { return ProcCovariance }

// Between returns the covariance of columns i and j
func (r *CovarianceResult) Between(i, j int) float64 { return r.Matrix[i][j] }

// DescriptiveResult summarises one numeric column
type DescriptiveResult struct {
	Column   string
	N        int
	Mean     float64
	Median   float64
	Mode     float64   // smallest of the most frequent values
	Modes    []float64 // every most frequent value, ascending
	StdDev   float64   // sample standard deviation (n-1)
	Skewness float64   // biased (population) skewness
	Kurtosis float64   // biased excess kurtosis
	Q1, Q3   float64
	Min, Max float64
}

func (r *DescriptiveResult) ProcedureName() Procedure { return ProcDescriptive }

// NormalityResult is a Shapiro-Wilk check of one column
type NormalityResult struct {
	Column string
	W      float64
	P      float64
	N      int
	Normal bool
}

func (r *NormalityResult) ProcedureName() Procedure { return ProcNormality }

// Analysis is everything one user action produced.
// Primary is nil for procedures that only summarise or chart columns.
type Analysis struct {
	Request      Request
	Columns      []string
	Primary      Result
	Descriptives []*DescriptiveResult
	Normality    []*NormalityResult
	Warnings     []string
	ComputedAt   time.Time
	Duration     time.Duration
}

// Significance threshold used by every interpretation
const Alpha = 0.05
