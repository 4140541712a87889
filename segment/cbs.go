package segment

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/grailbio/cnv/cna"
)

// segmenter holds the per-chromosome working state. The input bins are
// read-only; all mutable scratch lives here, so chromosomes can be
// segmented concurrently without shared state.
type segmenter struct {
	bins []cna.Bin
	opts Opts
	rng  *rand.Rand

	// usable[i] indexes bins; only nonzero-weight bins enter the
	// statistic. Zero-weight bins stay positionally present and are
	// attached to the enclosing segment afterward.
	usable  []int
	vals    []float64
	weights []float64

	// breaks are accepted split points in usable-index space.
	breaks []int

	// scratch for permutation testing
	permVals    []float64
	permWeights []float64

	stats Stats
}

func newSegmenter(bins []cna.Bin, opts Opts, rng *rand.Rand) *segmenter {
	s := &segmenter{bins: bins, opts: opts, rng: rng}
	for i := range bins {
		if bins[i].Weight > 0 {
			s.usable = append(s.usable, i)
			s.vals = append(s.vals, bins[i].Log2)
			s.weights = append(s.weights, bins[i].Weight)
		}
	}
	s.stats.Chromosomes = 1
	s.stats.UsableBins = len(s.usable)
	s.stats.MaskedBins = len(bins) - len(s.usable)
	return s
}

// run segments the chromosome and returns its segments in genomic order.
func (s *segmenter) run() []cna.Segment {
	s.split(0, len(s.usable))
	sort.Ints(s.breaks)

	// Cut points in usable space map to bin index cuts at the first
	// usable bin of the right-hand part; zero-weight bins between two
	// usable bins therefore belong to the left segment, and leading or
	// trailing zero-weight bins join the first or last segment.
	cuts := []int{0}
	for _, b := range s.breaks {
		cuts = append(cuts, s.usable[b])
	}
	cuts = append(cuts, len(s.bins))

	segs := make([]cna.Segment, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		segs = append(segs, s.makeSegment(cuts[i], cuts[i+1]))
	}
	return segs
}

func (s *segmenter) makeSegment(lo, hi int) cna.Segment {
	bins := s.bins[lo:hi]
	var vals, weights []float64
	var weight float64
	for i := range bins {
		if bins[i].Weight > 0 {
			vals = append(vals, bins[i].Log2)
			weights = append(weights, bins[i].Weight)
			weight += bins[i].Weight
		}
	}
	var mean float64
	if weight > 0 {
		mean = stat.Mean(vals, weights)
	}
	return cna.Segment{
		Chrom:  bins[0].Chrom,
		Start:  bins[0].Start,
		End:    bins[len(bins)-1].End,
		Gene:   cna.SummarizeGenes(bins),
		Log2:   mean,
		NBins:  len(bins),
		Weight: weight,
	}
}

// split recursively partitions the usable-index interval [lo, hi).
func (s *segmenter) split(lo, hi int) {
	if hi-lo < s.opts.MinBins {
		return
	}
	s.stats.SplitsTested++
	t, idx := bestSplit(s.vals[lo:hi], s.weights[lo:hi])
	if idx < 0 || t <= 0 {
		return
	}
	if !s.significant(lo, hi, t) {
		return
	}
	s.stats.SplitsAccepted++
	s.breaks = append(s.breaks, lo+idx)
	s.split(lo, lo+idx)
	s.split(lo+idx, hi)
}

// significant runs the permutation test: bin order within the interval
// is shuffled and the best split statistic recomputed for each
// permutation. The observed split is accepted only if the fraction of
// permutations with a strictly greater statistic stays below Alpha.
// Counting stops early once that fraction is exceeded.
func (s *segmenter) significant(lo, hi int, observed float64) bool {
	n := hi - lo
	s.permVals = append(s.permVals[:0], s.vals[lo:hi]...)
	s.permWeights = append(s.permWeights[:0], s.weights[lo:hi]...)

	maxExceed := int(s.opts.Alpha * float64(s.opts.Permutations))
	exceed := 0
	for p := 0; p < s.opts.Permutations; p++ {
		s.rng.Shuffle(n, func(i, j int) {
			s.permVals[i], s.permVals[j] = s.permVals[j], s.permVals[i]
			s.permWeights[i], s.permWeights[j] = s.permWeights[j], s.permWeights[i]
		})
		s.stats.PermutationsRun++
		if t, _ := bestSplit(s.permVals, s.permWeights); t > observed {
			exceed++
			if exceed > maxExceed {
				return false
			}
		}
	}
	return true
}

// bestSplit scans every split of the weighted sequence and returns the
// maximal two-sample t-type statistic and its split index (the first
// element of the right-hand part). If several splits tie, the leftmost
// wins. An interval too short to split returns index -1.
//
// The statistic is the weighted mean difference over its pooled
// standard error:
//
//	T = |m1 - m2| / sqrt(s2 * (1/w1 + 1/w2))
//
// where s2 is the pooled weighted residual variance around the two
// part means. A perfect two-level fit has s2 == 0 and T == +Inf.
func bestSplit(vals, weights []float64) (float64, int) {
	n := len(vals)
	if n < 2 {
		return 0, -1
	}
	var totW, totWX, totWXX float64
	for i := 0; i < n; i++ {
		w, x := weights[i], vals[i]
		totW += w
		totWX += w * x
		totWXX += w * x * x
	}

	best, bestIdx := 0.0, -1
	var cw, cwx, cwxx float64
	for i := 1; i < n; i++ {
		cw += weights[i-1]
		cwx += weights[i-1] * vals[i-1]
		cwxx += weights[i-1] * vals[i-1] * vals[i-1]
		w1, w2 := cw, totW-cw
		if w1 <= 0 || w2 <= 0 {
			continue
		}
		m1 := cwx / w1
		m2 := (totWX - cwx) / w2
		diff := m1 - m2
		if diff == 0 {
			continue
		}
		sse := (cwxx - w1*m1*m1) + ((totWXX - cwxx) - w2*m2*m2)
		if sse < 0 {
			sse = 0 // float cancellation
		}
		var t float64
		if sse == 0 {
			t = math.Inf(1)
		} else {
			s2 := sse / (w1 + w2)
			t = math.Abs(diff) / math.Sqrt(s2*(1/w1+1/w2))
		}
		if t > best {
			best, bestIdx = t, i
		}
	}
	return best, bestIdx
}
