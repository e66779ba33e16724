package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestWeightedMatchesRepeated(t *testing.T) {
	is := is.New(t)
	var w, r Statistic
	vals := []float64{53, 45, 44, 53}
	weights := []float64{3, 1, 2, 6}
	for i, v := range vals {
		w.PushWeighted(v, weights[i])
		for j := 0; j < int(weights[i]); j++ {
			r.Push(v)
		}
	}
	is.True(FuzzyEqual(w.Mean(), r.Mean()))
	is.True(FuzzyEqual(w.Variance(), r.Variance()))
	is.Equal(w.Weight(), 12.0)
	is.Equal(w.Iterations(), 4)
}

func TestMerge(t *testing.T) {
	is := is.New(t)
	var all, a, b Statistic
	for i, v := range []float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19} {
		all.Push(v)
		if i < 4 {
			a.Push(v)
		} else {
			b.Push(v)
		}
	}
	var empty Statistic
	a.Merge(&empty)
	a.Merge(&b)
	is.True(FuzzyEqual(a.Mean(), all.Mean()))
	is.True(FuzzyEqual(a.Stdev(), all.Stdev()))
	is.Equal(a.Iterations(), 10)

	empty.Merge(&all)
	is.True(FuzzyEqual(empty.Mean(), 47.2))
}

func TestSummarize(t *testing.T) {
	is := is.New(t)
	s := Summarize([]float64{3, 1, 2}, nil)
	is.True(FuzzyEqual(s.Mean, 2))
	is.True(FuzzyEqual(s.Stdev, 1))
	is.Equal(s.Min, 1.0)
	is.Equal(s.Max, 3.0)
	is.Equal(s.Median, 2.0)

	is.Equal(Summarize(nil, nil), Summary{})
	one := Summarize([]float64{7}, []float64{4})
	is.Equal(one.Stdev, 0.0)
	is.Equal(one.Mean, 7.0)
}

func TestProportionInterval(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	lo, hi := ProportionInterval(50, 100, 95)
	is.True(lo < 0.5 && hi > 0.5)
	is.True(FuzzyEqual(hi-0.5, 0.5-lo))
	lo, hi = ProportionInterval(0, 0, 95)
	is.Equal(lo, 0.0)
	is.Equal(hi, 1.0)
	lo, _ = ProportionInterval(0, 10, 95)
	is.Equal(lo, 0.0)
}
