// Package smooth down-weights single-bin artifacts before segmentation.
// A rolling robust center (median) and dispersion (median absolute
// deviation) are computed in a window around each bin; bins deviating
// beyond a configurable multiple of the dispersion have their weight
// multiplied toward zero. Bins are never removed, so genomic
// coordinates and table length are preserved.
package smooth

import (
	"math"

	"github.com/grailbio/cnv/cna"
	"github.com/montanaflynn/stats"
)

// Opts controls the outlier filter.
type Opts struct {
	// MADFactor is the number of scaled median absolute deviations a
	// bin's log2 may stray from the rolling median before it is
	// down-weighted.
	MADFactor float64
	// BaseHalfWindow is the half-width, in bins, of the rolling window
	// at density 1.0 (fully tiled targets). The effective half-width of
	// each bin is BaseHalfWindow scaled by its local density, so sparse
	// antitarget windows cover a genomically comparable span with fewer
	// bins.
	BaseHalfWindow int
	// MinHalfWindow and MaxHalfWindow clamp the effective half-width.
	MinHalfWindow int
	MaxHalfWindow int
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	MADFactor:      4.0,
	BaseHalfWindow: 10,
	MinHalfWindow:  2,
	MaxHalfWindow:  50,
}

// madScale rescales a median absolute deviation to be comparable to a
// standard deviation under normality.
const madScale = 1.4826

// Smooth returns a copy of tbl with outlier bins down-weighted. The
// reference supplies the per-bin density covariate used to size each
// window; ref may be nil, in which case every window uses
// BaseHalfWindow. Windows never cross chromosome boundaries.
func Smooth(tbl *cna.Table, ref *cna.Reference, opts Opts) *cna.Table {
	if opts.MADFactor <= 0 {
		opts.MADFactor = DefaultOpts.MADFactor
	}
	if opts.BaseHalfWindow <= 0 {
		opts.BaseHalfWindow = DefaultOpts.BaseHalfWindow
	}
	if opts.MinHalfWindow <= 0 {
		opts.MinHalfWindow = DefaultOpts.MinHalfWindow
	}
	if opts.MaxHalfWindow <= 0 {
		opts.MaxHalfWindow = DefaultOpts.MaxHalfWindow
	}

	out := tbl.Clone()
	for _, cr := range tbl.Chroms() {
		smoothChrom(out, tbl, ref, cr, opts)
	}
	return out
}

func smoothChrom(out, in *cna.Table, ref *cna.Reference, cr cna.ChromRange, opts Opts) {
	for i := cr.Start; i < cr.End; i++ {
		b := &in.Bins[i]
		if b.Weight <= 0 {
			continue
		}
		half := opts.BaseHalfWindow
		if ref != nil {
			half = int(math.Round(float64(opts.BaseHalfWindow) * ref.Bins[i].Density))
		}
		if half < opts.MinHalfWindow {
			half = opts.MinHalfWindow
		}
		if half > opts.MaxHalfWindow {
			half = opts.MaxHalfWindow
		}
		lo, hi := i-half, i+half+1
		if lo < cr.Start {
			lo = cr.Start
		}
		if hi > cr.End {
			hi = cr.End
		}
		vals := make([]float64, 0, hi-lo)
		for j := lo; j < hi; j++ {
			if in.Bins[j].Weight > 0 {
				vals = append(vals, in.Bins[j].Log2)
			}
		}
		if len(vals) < 3 {
			continue
		}
		med, err := stats.Median(vals)
		if err != nil {
			continue
		}
		mad, err := stats.MedianAbsoluteDeviation(vals)
		if err != nil {
			continue
		}
		cutoff := opts.MADFactor * madScale * mad
		if cutoff <= 0 {
			// A perfectly flat window: any deviation at all is an
			// artifact against it.
			if b.Log2 != med {
				out.Bins[i].Weight = 0
			}
			continue
		}
		if dev := math.Abs(b.Log2 - med); dev > cutoff {
			// Quadratic falloff: weight shrinks smoothly toward zero as
			// the deviation grows past the cutoff.
			f := cutoff / dev
			out.Bins[i].Weight = b.Weight * f * f
		}
	}
}
