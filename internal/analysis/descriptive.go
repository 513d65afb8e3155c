package analysis

import (
	"math"
	"sort"

	"statdash/domain/core"

	"github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"
)

// Describe summarises the finite values of a column. Skewness and kurtosis are the
// biased moment estimators; kurtosis is excess (normal = 0). Quartiles interpolate
// linearly between order statistics.
func Describe(values []float64) (*DescriptiveResult, error) {
	xs := finite(values)
	if len(xs) == 0 {
		return nil, core.NewComputationError(string(ProcDescriptive), "column has no numeric values", nil)
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	mean, err := stats.Mean(xs)
	if err != nil {
		return nil, core.NewComputationError(string(ProcDescriptive), "mean", err)
	}
	median, _ := stats.Median(sorted)
	minV, _ := stats.Min(sorted)
	maxV, _ := stats.Max(sorted)

	std := math.NaN()
	if len(xs) > 1 {
		std, _ = stats.StandardDeviationSample(xs)
	}

	modes := modesOf(sorted)

	skew, kurt := math.NaN(), math.NaN()
	if m2 := gstat.Moment(2, xs, nil); m2 > 0 {
		skew = gstat.Moment(3, xs, nil) / math.Pow(m2, 1.5)
		kurt = gstat.Moment(4, xs, nil)/(m2*m2) - 3
	}

	return &DescriptiveResult{
		N:        len(xs),
		Mean:     mean,
		Median:   median,
		Mode:     modes[0],
		Modes:    modes,
		StdDev:   std,
		Skewness: skew,
		Kurtosis: kurt,
		Q1:       quantile(sorted, 0.25),
		Q3:       quantile(sorted, 0.75),
		Min:      minV,
		Max:      maxV,
	}, nil
}

// modesOf returns every most frequent value in ascending order. sorted must be sorted.
func modesOf(sorted []float64) []float64 {
	modes, err := stats.Mode(sorted)
	if err == nil && len(modes) > 0 {
		return modes
	}
	// every distinct value ties for most frequent
	distinct := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	return distinct
}

// quantile interpolates between the order statistics around p*(n-1)
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
