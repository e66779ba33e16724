// Package stats has small running-statistics helpers used by the tree
// analysis and self-play reports.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running, optionally weighted, mean and variance. A
// canonical position that stands for many raw positions is pushed once
// with its multiplicity as the weight.
type Statistic struct {
	n           int
	totalWeight float64
	last        float64
	mean        float64
	// weighted sum of squared deviations (West's update).
	s float64
}

func (s *Statistic) Push(val float64) {
	s.PushWeighted(val, 1)
}

func (s *Statistic) PushWeighted(val, weight float64) {
	if weight <= 0 {
		return
	}
	s.last = val
	s.n++
	s.totalWeight += weight
	delta := val - s.mean
	s.mean += delta * weight / s.totalWeight
	s.s += weight * delta * (val - s.mean)
}

// Merge folds o into s, as if every value pushed to o had been pushed to s.
func (s *Statistic) Merge(o *Statistic) {
	if o.totalWeight == 0 {
		return
	}
	if s.totalWeight == 0 {
		*s = *o
		return
	}
	w := s.totalWeight + o.totalWeight
	delta := o.mean - s.mean
	s.s += o.s + delta*delta*s.totalWeight*o.totalWeight/w
	s.mean += delta * o.totalWeight / w
	s.totalWeight = w
	s.n += o.n
	s.last = o.last
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

// Variance is the unbiased sample variance, treating weights as
// repetition counts.
func (s *Statistic) Variance() float64 {
	if s.totalWeight <= 1 {
		return 0.0
	}
	return s.s / (s.totalWeight - 1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.totalWeight == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / s.totalWeight)
}

// Iterations is the number of pushes.
func (s *Statistic) Iterations() int {
	return s.n
}

// Weight is the sum of all pushed weights.
func (s *Statistic) Weight() float64 {
	return s.totalWeight
}

// Summary holds descriptive statistics for a batch of values.
type Summary struct {
	Mean   float64 `yaml:"mean"`
	Stdev  float64 `yaml:"stdev"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Median float64 `yaml:"median"`
}

// Summarize computes a Summary for xs with optional weights (nil means all
// ones). xs is sorted in place together with weights.
func Summarize(xs, weights []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(xs, weights)
	if len(xs) == 1 || math.IsNaN(std) {
		std = 0
	}
	stat.SortWeighted(xs, weights)
	return Summary{
		Mean:   mean,
		Stdev:  std,
		Min:    xs[0],
		Max:    xs[len(xs)-1],
		Median: stat.Quantile(0.5, stat.Empirical, xs, weights),
	}
}
