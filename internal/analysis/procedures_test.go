package analysis

import (
	"math"
	"testing"

	"statdash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestOneSampleTTest(t *testing.T) {
	res, err := OneSampleTTest([]float64{1, 2, 3, 4, 5}, 0)
	require.NoError(t, err)

	assert.InDelta(t, 4.2426, res.T, 1e-4)
	assert.InDelta(t, 4, res.DF, 1e-9)
	assert.InDelta(t, 0.0132, res.P, 1e-3)
	assert.Equal(t, 5, res.N1)
	assert.InDelta(t, 3, res.Means[0], 1e-12)
}

func TestOneSampleTTestDropsMissing(t *testing.T) {
	withNaN, err := OneSampleTTest([]float64{1, math.NaN(), 2, 3, math.Inf(1), 4, 5}, 0)
	require.NoError(t, err)
	clean, err := OneSampleTTest([]float64{1, 2, 3, 4, 5}, 0)
	require.NoError(t, err)
	assert.InDelta(t, clean.T, withNaN.T, 1e-12)
}

func TestTTestDegenerateInputs(t *testing.T) {
	_, err := OneSampleTTest([]float64{4, 4, 4}, 1)
	assert.True(t, core.IsComputationError(err), "zero variance: %v", err)

	_, err = OneSampleTTest([]float64{4}, 1)
	assert.True(t, core.IsComputationError(err), "single value: %v", err)

	_, err = WelchTTest([]float64{1, 1, 1}, []float64{2, 2, 2})
	assert.True(t, core.IsComputationError(err), "constant samples: %v", err)

	_, err = PairedTTest([]float64{1, 2, 3}, []float64{2, 3, 4})
	assert.True(t, core.IsComputationError(err), "constant differences: %v", err)
}

func TestPairedTTestArity(t *testing.T) {
	_, err := PairedTTest([]float64{1, 2, 3}, []float64{1, 2})
	require.Error(t, err)
	assert.True(t, core.IsArityError(err))
}

// TestPairedTTestSwap checks that swapping the samples flips t and keeps p
func TestPairedTTestSwap(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 2, 4, 4, 7}

	ab, err := PairedTTest(a, b)
	require.NoError(t, err)
	ba, err := PairedTTest(b, a)
	require.NoError(t, err)

	assert.InDelta(t, -2.138, ab.T, 1e-3)
	assert.InDelta(t, -ab.T, ba.T, 1e-12)
	assert.InDelta(t, ab.P, ba.P, 1e-12)
	assert.InDelta(t, 4, ab.DF, 1e-9)
}

func TestWelchTTest(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{6, 7, 8, 9, 10}

	ab, err := WelchTTest(a, b)
	require.NoError(t, err)
	assert.InDelta(t, -5, ab.T, 1e-9)
	assert.InDelta(t, 8, ab.DF, 1e-9)
	expectedP := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 8}.Survival(5)
	assert.InDelta(t, expectedP, ab.P, 1e-9)

	ba, err := WelchTTest(b, a)
	require.NoError(t, err)
	assert.InDelta(t, -ab.T, ba.T, 1e-12)
	assert.InDelta(t, ab.P, ba.P, 1e-12)
	assert.InDelta(t, ab.DF, ba.DF, 1e-12)
}

func TestWelchTTestDropsMissingPerColumn(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, math.NaN()}
	b := []float64{6, 7, math.NaN(), 8, 9, 10}

	res, err := WelchTTest(a, b)
	require.NoError(t, err)
	assert.Equal(t, 5, res.N1)
	assert.Equal(t, 5, res.N2)
}

func TestChiSquareIndependentTable(t *testing.T) {
	res, err := ChiSquare([][]float64{{10, 10}, {10, 10}})
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Chi2, 1e-12)
	assert.InDelta(t, 1, res.P, 1e-12)
	assert.Equal(t, 1, res.DF)
	assert.True(t, res.Yates)
	assert.Equal(t, [][]float64{{10, 10}, {10, 10}}, res.Expected)
}

func TestChiSquareYatesCorrection(t *testing.T) {
	res, err := ChiSquare([][]float64{{10, 20}, {30, 40}})
	require.NoError(t, err)
	assert.InDelta(t, 0.4464, res.Chi2, 1e-3)
	assert.InDelta(t, 0.504, res.P, 5e-3)
	assert.InDelta(t, 12, res.Expected[0][0], 1e-12)
	assert.InDelta(t, 42, res.Expected[1][1], 1e-12)
}

func TestChiSquareNoCorrectionAboveOneDF(t *testing.T) {
	res, err := ChiSquare([][]float64{{10, 20, 30}, {20, 20, 20}})
	require.NoError(t, err)
	assert.False(t, res.Yates)
	assert.Equal(t, 2, res.DF)
	assert.InDelta(t, 16.0/3.0, res.Chi2, 1e-9)
	assert.InDelta(t, math.Exp(-8.0/3.0), res.P, 1e-9)
}

func TestChiSquareErrors(t *testing.T) {
	_, err := ChiSquare([][]float64{{10, 0}, {5, 0}})
	assert.True(t, core.IsComputationError(err), "zero expected: %v", err)

	_, err = ChiSquare([][]float64{{10, -1}, {5, 3}})
	assert.True(t, core.IsComputationError(err), "negative: %v", err)

	_, err = ChiSquare(nil)
	assert.True(t, core.IsComputationError(err), "empty: %v", err)
}

func TestChiSquareSingleRow(t *testing.T) {
	res, err := ChiSquare([][]float64{{3, 4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.DF)
	assert.Equal(t, 1.0, res.P)
}

func TestParseContingency(t *testing.T) {
	grid, err := ParseContingency([][]string{{"1", ""}, {" 2.5 ", "4"}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {2.5, 4}}, grid)

	_, err = ParseContingency([][]string{{"1", "abc"}})
	assert.True(t, core.IsComputationError(err))
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	res, err := Correlation(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1, res.R, 1e-12)
	assert.Equal(t, 0.0, res.P)
	assert.Equal(t, 5, res.N)

	neg, err := Correlation(a, []float64{10, 8, 6, 4, 2})
	require.NoError(t, err)
	assert.InDelta(t, -1, neg.R, 1e-12)

	mid, err := Correlation(a, []float64{2, 4, 5, 4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.7746, mid.R, 1e-4)
	assert.True(t, mid.P > 0 && mid.P < 1)

	_, err = Correlation(a, []float64{3, 3, 3, 3, 3})
	assert.True(t, core.IsComputationError(err))
}

func TestCovariance(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 5, 4, 5}

	res, err := Covariance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, res.Matrix[0][0], 1e-12)
	assert.InDelta(t, 1.5, res.Matrix[1][1], 1e-12)
	assert.InDelta(t, 1.5, res.Between(0, 1), 1e-12)
	assert.InDelta(t, res.Between(0, 1), res.Between(1, 0), 1e-12)

	// diagonal equals the sample variance
	d, err := Describe(a)
	require.NoError(t, err)
	assert.InDelta(t, d.StdDev*d.StdDev, res.Matrix[0][0], 1e-12)
}

func TestCovarianceListwise(t *testing.T) {
	res, err := Covariance([]float64{1, 2, math.NaN(), 3}, []float64{1, 2, 9, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.N)
	assert.InDelta(t, 1, res.Matrix[0][1], 1e-12)
}

func TestDescribe(t *testing.T) {
	d, err := Describe([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, 5, d.N)
	assert.InDelta(t, 3, d.Mean, 1e-12)
	assert.InDelta(t, 3, d.Median, 1e-12)
	assert.InDelta(t, 1.5811, d.StdDev, 1e-4)
	assert.InDelta(t, 0, d.Skewness, 1e-12)
	assert.InDelta(t, -1.3, d.Kurtosis, 1e-12)
	assert.InDelta(t, 2, d.Q1, 1e-12)
	assert.InDelta(t, 4, d.Q3, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.Equal(t, 1.0, d.Mode)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, d.Modes)
}

func TestDescribeMode(t *testing.T) {
	d, err := Describe([]float64{3, 1, 2, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, d.Mode)
	assert.Equal(t, []float64{2, 3}, d.Modes)

	single, err := Describe([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, single.Mode)
	assert.True(t, math.IsNaN(single.StdDev))

	_, err = Describe([]float64{math.NaN()})
	assert.True(t, core.IsComputationError(err))
}

func TestDescribeQuartilesInterpolate(t *testing.T) {
	d, err := Describe([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.75, d.Q1, 1e-12)
	assert.InDelta(t, 2.5, d.Median, 1e-12)
	assert.InDelta(t, 3.25, d.Q3, 1e-12)
}

func TestShapiroWilkThreePoints(t *testing.T) {
	res, err := ShapiroWilk([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1, res.W, 1e-9)
	assert.InDelta(t, 1, res.P, 1e-9)
	assert.True(t, res.Normal)
}

func TestShapiroWilkNormalQuantiles(t *testing.T) {
	n := 30
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
	}
	res, err := ShapiroWilk(xs)
	require.NoError(t, err)
	assert.Greater(t, res.W, 0.98)
	assert.True(t, res.Normal)
}

func TestShapiroWilkSkewed(t *testing.T) {
	xs := []float64{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 3, 50, 120}
	res, err := ShapiroWilk(xs)
	require.NoError(t, err)
	assert.Less(t, res.W, 0.7)
	assert.Less(t, res.P, 0.05)
	assert.False(t, res.Normal)
}

func TestShapiroWilkSmallSampleBranch(t *testing.T) {
	res, err := ShapiroWilk([]float64{2.1, 3.4, 1.9, 5.6, 4.4, 3.3, 2.8})
	require.NoError(t, err)
	assert.True(t, res.W > 0.8 && res.W <= 1)
	assert.True(t, res.P > 0 && res.P <= 1)
}

func TestShapiroWilkErrors(t *testing.T) {
	_, err := ShapiroWilk([]float64{1, 2})
	assert.True(t, core.IsComputationError(err))

	_, err = ShapiroWilk([]float64{5, 5, 5, 5})
	assert.True(t, core.IsComputationError(err))
}
