package analysis

import (
	"math"

	"statdash/domain/core"
	"statdash/domain/table"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation computes the Pearson correlation of a and b over rows where both are
// present, with a two-sided p-value from the t distribution on n-2 degrees of freedom.
func Correlation(a, b []float64) (*CorrelationResult, error) {
	rows := table.CompleteValues(a, b)
	x, y := rows[0], rows[1]
	n := len(x)
	if n < 3 {
		return nil, core.NewComputationError(string(ProcCorrelation), "need at least 3 complete rows", nil)
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return nil, core.NewComputationError(string(ProcCorrelation), "correlation is undefined for a constant column", nil)
	}

	p := 0.0
	if denom := 1 - r*r; denom > 0 {
		df := float64(n - 2)
		t := r * math.Sqrt(df/denom)
		p = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
	}
	return &CorrelationResult{R: r, P: math.Min(p, 1), N: n}, nil
}

// Covariance computes the sample covariance matrix (n-1 denominator) of the given
// columns over rows where every column is present.
func Covariance(columns ...[]float64) (*CovarianceResult, error) {
	if len(columns) < 2 {
		return nil, core.NewComputationError(string(ProcCovariance), "need at least 2 columns", nil)
	}
	rows := table.CompleteValues(columns...)
	n := len(rows[0])
	if n < 2 {
		return nil, core.NewComputationError(string(ProcCovariance), "need at least 2 complete rows", nil)
	}

	k := len(columns)
	data := mat.NewDense(n, k, nil)
	for j, col := range rows {
		data.SetCol(j, col)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		for j := range matrix[i] {
			matrix[i][j] = cov.At(i, j)
		}
	}
	return &CovarianceResult{Matrix: matrix, N: n}, nil
}
