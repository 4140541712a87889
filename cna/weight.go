package cna

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WeightedMedian returns the weight-balanced median of vals. It reports
// false when no value carries positive weight. The inputs are not
// modified.
func WeightedMedian(vals, weights []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	type pair struct{ v, w float64 }
	pairs := make([]pair, 0, len(vals))
	for i, v := range vals {
		if weights[i] > 0 {
			pairs = append(pairs, pair{v, weights[i]})
		}
	}
	if len(pairs) == 0 {
		return 0, false
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })
	sv := make([]float64, len(pairs))
	sw := make([]float64, len(pairs))
	for i, p := range pairs {
		sv[i] = p.v
		sw[i] = p.w
	}
	return stat.Quantile(0.5, stat.Empirical, sv, sw), true
}
