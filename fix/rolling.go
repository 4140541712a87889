package fix

import (
	"sort"

	"github.com/grailbio/cnv/cna"
)

// centerByWindow orders the usable bins by one covariate and subtracts,
// from each bin, the weighted median log2 of the bins in a rolling
// window around it in that ordering. A flat signal is unchanged; a
// systematic trend along the covariate is removed.
func centerByWindow(t *cna.Table, ref *cna.Reference, frac float64, covariate func(*cna.ReferenceBin) float64) {
	var order []int
	for i := range t.Bins {
		if !t.Bins[i].LowDepth {
			order = append(order, i)
		}
	}
	n := len(order)
	if n < 3 {
		return
	}
	sort.SliceStable(order, func(a, b int) bool {
		return covariate(&ref.Bins[order[a]]) < covariate(&ref.Bins[order[b]])
	})

	half := int(frac * float64(n) / 2)
	if half < 1 {
		half = 1
	}
	shift := make([]float64, n)
	vals := make([]float64, 0, 2*half+1)
	weights := make([]float64, 0, 2*half+1)
	for k := range order {
		lo, hi := k-half, k+half+1
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		vals = vals[:0]
		weights = weights[:0]
		for _, idx := range order[lo:hi] {
			vals = append(vals, t.Bins[idx].Log2)
			weights = append(weights, t.Bins[idx].Weight)
		}
		if med, ok := cna.WeightedMedian(vals, weights); ok {
			shift[k] = med
		}
	}
	for k, idx := range order {
		t.Bins[idx].Log2 -= shift[k]
	}
}
