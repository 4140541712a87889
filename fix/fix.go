// Package fix normalizes a sample coverage table against the pooled
// reference baseline and removes systematic bias by regressing the log2
// ratios against the baseline covariates (GC content, repeat fraction,
// bin density).
package fix

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/grailbio/cnv/cna"
)

// Opts controls bias correction.
type Opts struct {
	// WindowFraction is the fraction of usable bins in each rolling
	// window when re-centering along a covariate.
	WindowFraction float64
	// SkipGC, SkipRepeat and SkipDensity disable the corresponding
	// covariate correction.
	SkipGC      bool
	SkipRepeat  bool
	SkipDensity bool
	// MinUsableFraction is the fraction of bins that must have usable
	// depth for trend correction to run at all. Below it, the ratios
	// are still computed but the covariate trends are left alone, since
	// fitting them to a near-empty sample would be noise.
	MinUsableFraction float64
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	WindowFraction:    0.1,
	MinUsableFraction: 0.5,
}

// Correct computes per-bin log2 ratios of the sample against the
// baseline and subtracts the rolling covariate trends. The input table
// is not modified. Bins with zero or missing depth in either the sample
// or the baseline are flagged LowDepth and carried through with weight
// zero so that segment contiguity is preserved downstream.
//
// Correct is deterministic: identical inputs produce identical output.
func Correct(tbl *cna.Table, ref *cna.Reference, opts Opts) (*cna.Table, error) {
	if err := ref.AlignWith(tbl); err != nil {
		return nil, err
	}
	if opts.WindowFraction <= 0 {
		opts.WindowFraction = DefaultOpts.WindowFraction
	}

	out := tbl.Clone()
	nUsable := 0
	for i := range out.Bins {
		b := &out.Bins[i]
		rb := &ref.Bins[i]
		if b.Depth <= 0 || rb.ExpectedDepth <= 0 {
			b.Log2 = 0
			b.Weight = 0
			b.LowDepth = true
			continue
		}
		b.Log2 = math.Log2(b.Depth / rb.ExpectedDepth)
		b.Weight = binWeight(b, rb)
		b.LowDepth = false
		nUsable++
	}
	if nUsable == 0 {
		log.Error.Printf("fix: no bins with usable depth; skipping bias correction")
		return out, nil
	}

	center(out)
	if float64(nUsable) < opts.MinUsableFraction*float64(out.Len()) {
		log.Error.Printf("fix: only %d/%d bins have usable coverage; "+
			"check that the right target regions were used. Skipping covariate correction.",
			nUsable, out.Len())
		return out, nil
	}

	if !opts.SkipGC {
		centerByWindow(out, ref, opts.WindowFraction, func(rb *cna.ReferenceBin) float64 { return rb.GC })
	}
	if !opts.SkipRepeat {
		centerByWindow(out, ref, opts.WindowFraction, func(rb *cna.ReferenceBin) float64 { return rb.RepeatFraction })
	}
	if !opts.SkipDensity {
		centerByWindow(out, ref, opts.WindowFraction, func(rb *cna.ReferenceBin) float64 { return rb.Density })
	}
	center(out)
	return out, nil
}

// binWeight derives a bin's reliability weight from the baseline:
// proportional to expected depth, penalized by the reference pool's
// spread, and combined with any weight already present on the input.
func binWeight(b *cna.Bin, rb *cna.ReferenceBin) float64 {
	w := rb.ExpectedDepth / (rb.ExpectedDepth + rb.Spread*rb.Spread)
	if b.Weight > 0 && b.Weight < 1 {
		w *= b.Weight
	}
	if w > 1 {
		w = 1
	}
	return w
}

// center subtracts the weighted median log2 of the usable bins so the
// table's neutral level sits at zero.
func center(t *cna.Table) {
	vals := make([]float64, 0, t.Len())
	weights := make([]float64, 0, t.Len())
	for i := range t.Bins {
		if b := &t.Bins[i]; !b.LowDepth {
			vals = append(vals, b.Log2)
			weights = append(weights, b.Weight)
		}
	}
	med, ok := cna.WeightedMedian(vals, weights)
	if !ok {
		return
	}
	for i := range t.Bins {
		if b := &t.Bins[i]; !b.LowDepth {
			b.Log2 -= med
		}
	}
}
