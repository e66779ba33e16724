package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value for a confidence level given in
// percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	return dist.Quantile((1 + confidenceInterval/100) / 2)
}

// ProportionInterval returns the normal-approximation interval around
// wins/n at the given confidence level, clamped to [0, 1].
func ProportionInterval(wins, n int, confidenceInterval float64) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	p := float64(wins) / float64(n)
	half := ZVal(confidenceInterval) * math.Sqrt(p*(1-p)/float64(n))
	return math.Max(0, p-half), math.Min(1, p+half)
}
