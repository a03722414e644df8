package recommend

import "sort"

// Neutral is the score used when a population is empty.
const Neutral = 0.5

// percentiles ranks a population of values. Equal values share the midpoint
// of their rank range.
type percentiles struct {
	sorted []float64
}

func newPercentiles(values []float64) percentiles {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return percentiles{sorted: s}
}

// Rank returns the share of the population below v plus half the share equal
// to v, in [0, 1]. An empty population yields Neutral.
func (p percentiles) Rank(v float64) float64 {
	n := len(p.sorted)
	if n == 0 {
		return Neutral
	}
	below := sort.SearchFloat64s(p.sorted, v)
	upto := sort.Search(n, func(i int) bool { return p.sorted[i] > v })
	return (float64(below) + 0.5*float64(upto-below)) / float64(n)
}
