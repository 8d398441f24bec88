package audit

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTest is the outcome of Welch's unequal-variance t-test.
type TTest struct {
	MeanA float64 `json:"mean_a"`
	MeanB float64 `json:"mean_b"`
	T     float64 `json:"t"`
	DF    float64 `json:"df"`
	P     float64 `json:"p"`
}

// Welch runs a two-sided Welch t-test on a and b. Both samples need at
// least two observations; otherwise P is 1.
func Welch(a, b []float64) TTest {
	if len(a) < 2 || len(b) < 2 {
		return TTest{MeanA: stat.Mean(a, nil), MeanB: stat.Mean(b, nil), P: 1}
	}

	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	sa := va / na
	sb := vb / nb
	se := math.Sqrt(sa + sb)
	res := TTest{MeanA: ma, MeanB: mb}
	if se == 0 {
		// Identical constant samples cannot be told apart.
		if ma == mb {
			res.P = 1
		}
		return res
	}

	res.T = (ma - mb) / se
	res.DF = (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.P = 2 * dist.Survival(math.Abs(res.T))
	return res
}
