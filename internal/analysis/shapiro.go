package analysis

import (
	"math"
	"sort"

	"statdash/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Polynomial coefficients of Royston's (1995) approximation, algorithm AS R94
var (
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

const shapiroMinN = 3

// ShapiroWilk tests values for normality. Missing values are dropped. The sample is
// considered normal when p > Alpha.
func ShapiroWilk(values []float64) (*NormalityResult, error) {
	x := finite(values)
	n := len(x)
	if n < shapiroMinN {
		return nil, core.NewComputationError(string(ProcNormality), "need at least 3 observations", nil)
	}
	sort.Float64s(x)

	rng := x[n-1] - x[0]
	if rng < 1e-19 {
		return nil, core.NewComputationError(string(ProcNormality), "all values are identical", nil)
	}

	a := swilkCoefficients(n)

	// W is the squared correlation between the ordered sample and the
	// antisymmetric coefficient vector.
	half := n / 2
	coef := make([]float64, n)
	for i := 0; i < half; i++ {
		coef[i] = -a[i]
		coef[n-1-i] = a[i]
	}
	var sa, sx float64
	for i := range x {
		sa += coef[i]
		sx += x[i] / rng
	}
	sa /= float64(n)
	sx /= float64(n)

	var ssa, ssx, sax float64
	for i := range x {
		asa := coef[i] - sa
		xsx := x[i]/rng - sx
		ssa += asa * asa
		ssx += xsx * xsx
		sax += asa * xsx
	}
	ssassx := math.Sqrt(ssa * ssx)
	w1 := (ssassx - sax) * (ssassx + sax) / (ssa * ssx)
	w := 1 - w1

	p := swilkPValue(w, n)
	return &NormalityResult{
		W:      w,
		P:      p,
		N:      n,
		Normal: p > Alpha,
	}, nil
}

// swilkCoefficients returns the first n/2 coefficients a_i (positive, largest first)
func swilkCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	m := make([]float64, half)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(swC1, rsn) - m[0]/ssumm2
	start := 1
	var fac float64
	if n > 5 {
		start = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := start; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swilkPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(math.Min(w, 1))) - math.Pi/3)
		return math.Max(0, math.Min(1, p))
	}

	an := float64(n)
	y := math.Log(1 - w)
	var mean, sd float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mean = poly(swC3, an)
		sd = math.Exp(poly(swC4, an))
	} else {
		ln := math.Log(an)
		mean = poly(swC5, ln)
		sd = math.Exp(poly(swC6, ln))
	}
	return distuv.Normal{Mu: mean, Sigma: sd}.Survival(y)
}

// poly evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
