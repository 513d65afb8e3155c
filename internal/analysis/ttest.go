package analysis

import (
	"errors"

	"statdash/domain/core"
	"statdash/domain/table"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/montanaflynn/stats"
)

// OneSampleTTest tests whether the mean of values differs from mu (two-sided).
// Missing values are dropped.
func OneSampleTTest(values []float64, mu float64) (*TTestResult, error) {
	xs := finite(values)
	if len(xs) < 2 {
		return nil, ttestError(ProcOneSampleTTest, mstats.ErrSampleSize)
	}
	if constant(xs) {
		return nil, ttestError(ProcOneSampleTTest, mstats.ErrZeroVariance)
	}
	res, err := mstats.OneSampleTTest(&mstats.Sample{Xs: xs}, mu, mstats.LocationDiffers)
	if err != nil {
		return nil, ttestError(ProcOneSampleTTest, err)
	}

	mean, _ := stats.Mean(xs)
	return &TTestResult{
		Procedure: ProcOneSampleTTest,
		T:         res.T,
		P:         res.P,
		DF:        res.DoF,
		N1:        int(res.N1),
		Mu:        mu,
		Means:     []float64{mean},
	}, nil
}

// PairedTTest tests whether the mean of a[i]-b[i] differs from zero (two-sided).
// a and b must have the same length; rows with a missing value on either side are dropped.
func PairedTTest(a, b []float64) (*TTestResult, error) {
	if len(a) != len(b) {
		return nil, &core.ArityError{Left: len(a), Right: len(b)}
	}
	x1, x2 := pairwise(a, b)
	if len(x1) < 2 {
		return nil, ttestError(ProcPairedTTest, mstats.ErrSampleSize)
	}
	diffs := make([]float64, len(x1))
	for i := range x1 {
		diffs[i] = x1[i] - x2[i]
	}
	if constant(diffs) {
		return nil, ttestError(ProcPairedTTest, mstats.ErrZeroVariance)
	}

	res, err := mstats.PairedTTest(x1, x2, 0, mstats.LocationDiffers)
	if err != nil {
		return nil, ttestError(ProcPairedTTest, err)
	}

	m1, _ := stats.Mean(x1)
	m2, _ := stats.Mean(x2)
	return &TTestResult{
		Procedure: ProcPairedTTest,
		T:         res.T,
		P:         res.P,
		DF:        res.DoF,
		N1:        int(res.N1),
		N2:        int(res.N2),
		Means:     []float64{m1, m2},
	}, nil
}

// WelchTTest tests whether two independent samples have different means without
// assuming equal variances. Missing values are dropped from each sample separately.
func WelchTTest(a, b []float64) (*TTestResult, error) {
	x1, x2 := finite(a), finite(b)
	if len(x1) < 2 || len(x2) < 2 {
		return nil, ttestError(ProcWelchTTest, mstats.ErrSampleSize)
	}
	if constant(x1) && constant(x2) {
		return nil, ttestError(ProcWelchTTest, mstats.ErrZeroVariance)
	}

	res, err := mstats.TwoSampleWelchTTest(&mstats.Sample{Xs: x1}, &mstats.Sample{Xs: x2}, mstats.LocationDiffers)
	if err != nil {
		return nil, ttestError(ProcWelchTTest, err)
	}

	m1, _ := stats.Mean(x1)
	m2, _ := stats.Mean(x2)
	return &TTestResult{
		Procedure: ProcWelchTTest,
		T:         res.T,
		P:         res.P,
		DF:        res.DoF,
		N1:        int(res.N1),
		N2:        int(res.N2),
		Means:     []float64{m1, m2},
	}, nil
}

func ttestError(proc Procedure, err error) error {
	switch {
	case errors.Is(err, mstats.ErrSampleSize):
		return core.NewComputationError(string(proc), "not enough observations (need at least 2 per sample)", err)
	case errors.Is(err, mstats.ErrZeroVariance):
		return core.NewComputationError(string(proc), "sample has zero variance", err)
	case errors.Is(err, mstats.ErrMismatchedSamples):
		return core.NewComputationError(string(proc), "paired samples differ in length", err)
	default:
		return core.NewComputationError(string(proc), "t-test failed", err)
	}
}

func constant(xs []float64) bool {
	v, err := stats.Variance(xs)
	return err == nil && v == 0
}

func finite(values []float64) []float64 {
	return table.FiniteValues(values)
}

// pairwise keeps positions where both a and b are finite
func pairwise(a, b []float64) ([]float64, []float64) {
	rows := table.CompleteValues(a, b)
	return rows[0], rows[1]
}
