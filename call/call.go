// Package call maps segment log2 ratios to discrete copy-number states
// under a purity/ploidy mixture model. The observed ratio of a segment
// is modeled as a mixture of tumor cells at the given purity carrying
// the unknown integer copy number, and normal cells at (1 - purity)
// carrying the neutral copy number (the ploidy, halved on sex
// chromosomes according to the reference and sample sex).
package call

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/grailbio/cnv/cna"
)

// CenterMode selects the optional re-centering applied to segment
// ratios before calling.
type CenterMode int

const (
	// CenterNone leaves the ratios as segmented.
	CenterNone CenterMode = iota
	// CenterMedian subtracts the weighted median segment log2.
	CenterMedian
	// CenterMean subtracts the weighted mean segment log2.
	CenterMean
)

// Opts controls calling.
type Opts struct {
	// Purity is the tumor-cell fraction in (0, 1]. 1 means a pure
	// sample (no normal contamination).
	Purity float64
	// Ploidy is the neutral reference copy number, typically 2.
	Ploidy int
	// IsReferenceMale indicates the pooled reference was built from
	// male samples, so chrX in the reference carries Ploidy/2 copies.
	IsReferenceMale bool
	// IsSampleFemale indicates the sample is female: chrX is expected
	// at full ploidy and chrY at zero copies.
	IsSampleFemale bool
	// MinSegmentWeight is the least total weight a segment needs to be
	// assigned an integer copy number. Lighter segments are reported as
	// Unknown rather than extrapolated from insufficient evidence.
	MinSegmentWeight float64
	// Center selects the optional weighted re-centering.
	Center CenterMode
	// MaxCopyNumber bounds the candidate scan.
	MaxCopyNumber int
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	Purity:           1.0,
	Ploidy:           2,
	MinSegmentWeight: 0,
	MaxCopyNumber:    12,
}

// minRatio guards the log2 domain when converting copy numbers to
// expected ratios: copy number 0 in a pure sample would otherwise be
// log2(0).
const minRatio = 1e-3

// Call assigns an integer copy number to every segment. It is a pure
// function of its inputs: the segments slice is not modified, and every
// input segment appears in the output, with Unknown set where the
// evidence is too light. Parameters outside the model domain fail fast
// with *cna.DegenerateModelError before any segment is scored.
func Call(segs []cna.Segment, opts Opts) ([]cna.Call, error) {
	if opts.Purity <= 0 || opts.Purity > 1 {
		return nil, &cna.DegenerateModelError{Param: "purity", Value: opts.Purity}
	}
	if opts.Ploidy <= 0 {
		return nil, &cna.DegenerateModelError{Param: "ploidy", Value: float64(opts.Ploidy)}
	}
	if opts.MaxCopyNumber <= 0 {
		opts.MaxCopyNumber = DefaultOpts.MaxCopyNumber
	}

	shift := centerShift(segs, opts.Center)
	calls := make([]cna.Call, 0, len(segs))
	for i := range segs {
		calls = append(calls, callOne(segs[i], shift, opts))
	}
	return calls, nil
}

func callOne(seg cna.Segment, shift float64, opts Opts) cna.Call {
	c := cna.Call{Segment: seg}
	if seg.Weight < opts.MinSegmentWeight || seg.Weight <= 0 {
		c.Unknown = true
		return c
	}
	refCopies, expectCopies := referenceExpectCopies(seg.Chrom, opts)
	observed := seg.Log2 - shift

	c.Absolute = log2RatioToAbsolute(observed, refCopies, expectCopies, opts.Purity)

	// Scan candidate integer copy numbers for the nearest expected
	// ratio. Ties resolve toward the neutral (expected) copy number, so
	// fewer aberrations are preferred.
	bestCN := 0
	bestDist := math.Inf(1)
	for cn := 0; cn <= opts.MaxCopyNumber; cn++ {
		d := math.Abs(observed - expectedLog2(cn, refCopies, expectCopies, opts.Purity))
		if d < bestDist || (d == bestDist && closerToNeutral(cn, bestCN, expectCopies)) {
			bestDist = d
			bestCN = cn
		}
	}
	c.CopyNumber = bestCN
	c.AdjustedLog2 = expectedLog2(bestCN, refCopies, expectCopies, opts.Purity)
	c.Confidence = confidence(observed, c.AdjustedLog2, seg.Weight)
	return c
}

// expectedLog2 returns the log2 ratio a segment with tumor copy number
// cn would show at the given purity:
//
//	log2((purity*cn + (1-purity)*expect) / ref)
func expectedLog2(cn, refCopies, expectCopies int, purity float64) float64 {
	ratio := (purity*float64(cn) + (1-purity)*float64(expectCopies)) / float64(refCopies)
	if ratio < minRatio {
		ratio = minRatio
	}
	return math.Log2(ratio)
}

// log2RatioToAbsolute inverts the mixture model, returning the
// continuous tumor copy number implied by an observed log2 ratio:
//
//	n = (ref * 2^v - expect*(1-purity)) / purity
//
// With purity 1 this reduces to n = ref * 2^v.
func log2RatioToAbsolute(log2 float64, refCopies, expectCopies int, purity float64) float64 {
	if purity < 1 {
		return (float64(refCopies)*math.Exp2(log2) - float64(expectCopies)*(1-purity)) / purity
	}
	return float64(refCopies) * math.Exp2(log2)
}

// referenceExpectCopies determines the copies of a chromosome present
// in the reference pool and expected in a neutral sample. Autosomes
// carry the ploidy in both. chrX carries half ploidy in a male
// reference and in a male sample; chrY carries half ploidy in the
// reference and zero copies in a female sample.
func referenceExpectCopies(chrom string, opts Opts) (refCopies, expectCopies int) {
	switch {
	case cna.IsChrX(chrom):
		if opts.IsReferenceMale {
			refCopies = opts.Ploidy / 2
		} else {
			refCopies = opts.Ploidy
		}
		if opts.IsSampleFemale {
			expectCopies = opts.Ploidy
		} else {
			expectCopies = opts.Ploidy / 2
		}
	case cna.IsChrY(chrom):
		refCopies = opts.Ploidy / 2
		if opts.IsSampleFemale {
			expectCopies = 0
		} else {
			expectCopies = opts.Ploidy / 2
		}
	default:
		refCopies = opts.Ploidy
		expectCopies = opts.Ploidy
	}
	if refCopies < 1 {
		refCopies = 1
	}
	return refCopies, expectCopies
}

func closerToNeutral(a, b, neutral int) bool {
	da, db := a-neutral, b-neutral
	if da < 0 {
		da = -da
	}
	if db < 0 {
		db = -db
	}
	return da < db
}

// confidence scores how consistent the observed ratio is with the
// called level, treating the segment's ratio as normal with standard
// deviation shrinking as evidence (total weight) accumulates. It is a
// two-sided tail probability: 1.0 for a perfect match, approaching 0 as
// the residual grows.
func confidence(observed, adjusted float64, weight float64) float64 {
	sigma := 1 / math.Sqrt(weight)
	dist := distuv.Normal{Mu: 0, Sigma: sigma}
	return 2 * dist.Survival(math.Abs(observed-adjusted))
}

// centerShift computes the weighted center of the segment ratios for
// the requested mode. Zero-weight segments do not contribute.
func centerShift(segs []cna.Segment, mode CenterMode) float64 {
	if mode == CenterNone || len(segs) == 0 {
		return 0
	}
	var vals, weights []float64
	for i := range segs {
		if segs[i].Weight > 0 {
			vals = append(vals, segs[i].Log2)
			weights = append(weights, segs[i].Weight)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	switch mode {
	case CenterMean:
		var sw, swx float64
		for i := range vals {
			sw += weights[i]
			swx += weights[i] * vals[i]
		}
		return swx / sw
	case CenterMedian:
		med, _ := cna.WeightedMedian(vals, weights)
		return med
	}
	return 0
}
