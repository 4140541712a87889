package segment

import (
	"context"
	"math/rand"
	"testing"

	"github.com/grailbio/cnv/cna"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func makeTable(t *testing.T, chrom string, log2 []float64) *cna.Table {
	bins := make([]cna.Bin, len(log2))
	for i, v := range log2 {
		bins[i] = cna.Bin{
			Chrom: chrom, Start: i * 100, End: (i + 1) * 100,
			Gene: "GENE", Log2: v, Weight: 1,
		}
	}
	tbl, err := cna.NewTable(bins)
	assert.NoError(t, err)
	return tbl
}

func TestTwoLevels(t *testing.T) {
	// Two clean groups with a large contrast must split exactly once,
	// between bins 2 and 3.
	tbl := makeTable(t, "chr1", []float64{0, 0, 1, 1})
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(res.Segments), 2)
	expect.EQ(t, res.Segments[0].Start, 0)
	expect.EQ(t, res.Segments[0].End, 200)
	expect.EQ(t, res.Segments[0].Log2, 0.0)
	expect.EQ(t, res.Segments[0].NBins, 2)
	expect.EQ(t, res.Segments[1].Start, 200)
	expect.EQ(t, res.Segments[1].End, 400)
	expect.EQ(t, res.Segments[1].Log2, 1.0)
	expect.EQ(t, len(res.Warnings), 0)
}

func TestFlatChromosome(t *testing.T) {
	// Noise below the significance threshold yields one segment
	// spanning the whole chromosome.
	rng := rand.New(rand.NewSource(99))
	vals := make([]float64, 200)
	for i := range vals {
		vals[i] = rng.NormFloat64() * 0.01
	}
	tbl := makeTable(t, "chr1", vals)
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(res.Segments), 1)
	expect.EQ(t, res.Segments[0].Start, 0)
	expect.EQ(t, res.Segments[0].End, 200*100)
	expect.EQ(t, res.Segments[0].NBins, 200)
}

func TestExactlyFlat(t *testing.T) {
	tbl := makeTable(t, "chr1", make([]float64, 50))
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(res.Segments), 1)
}

func TestAllZeroWeight(t *testing.T) {
	tbl := makeTable(t, "chr1", []float64{0, 0, 1, 1})
	for i := range tbl.Bins {
		tbl.Bins[i].Weight = 0
	}
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	expect.EQ(t, len(res.Segments), 0)
	assert.EQ(t, len(res.Warnings), 1)
	expect.EQ(t, res.Warnings[0].Chrom, "chr1")
}

func TestBadChromosomeDoesNotAbortOthers(t *testing.T) {
	bins := []cna.Bin{
		{Chrom: "chr1", Start: 0, End: 100, Log2: 0, Weight: 0},
		{Chrom: "chr1", Start: 100, End: 200, Log2: 0, Weight: 0},
		{Chrom: "chr2", Start: 0, End: 100, Log2: 0.5, Weight: 1},
		{Chrom: "chr2", Start: 100, End: 200, Log2: 0.5, Weight: 1},
	}
	tbl, err := cna.NewTable(bins)
	assert.NoError(t, err)
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(res.Segments), 1)
	expect.EQ(t, res.Segments[0].Chrom, "chr2")
	assert.EQ(t, len(res.Warnings), 1)
	expect.EQ(t, res.Warnings[0].Chrom, "chr1")
}

func TestSegmentsNeverSpanChromosomes(t *testing.T) {
	bins := []cna.Bin{
		{Chrom: "chr1", Start: 0, End: 100, Log2: 1, Weight: 1},
		{Chrom: "chr1", Start: 100, End: 200, Log2: 1, Weight: 1},
		{Chrom: "chr2", Start: 0, End: 100, Log2: 1, Weight: 1},
		{Chrom: "chr2", Start: 100, End: 200, Log2: 1, Weight: 1},
	}
	tbl, err := cna.NewTable(bins)
	assert.NoError(t, err)
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(res.Segments), 2)
	expect.EQ(t, res.Segments[0].Chrom, "chr1")
	expect.EQ(t, res.Segments[1].Chrom, "chr2")
}

func TestContiguity(t *testing.T) {
	// Segments per chromosome must tile the bin span exactly: no gaps,
	// no overlap, even with masked bins scattered through the table.
	rng := rand.New(rand.NewSource(7))
	var bins []cna.Bin
	for c, chrom := range []string{"chr1", "chr2"} {
		for i := 0; i < 100; i++ {
			v := rng.NormFloat64() * 0.05
			if i >= 50 && c == 0 {
				v += 0.8
			}
			w := 1.0
			if i%17 == 0 {
				w = 0
			}
			bins = append(bins, cna.Bin{
				Chrom: chrom, Start: i * 100, End: (i + 1) * 100,
				Gene: "GENE", Log2: v, Weight: w,
			})
		}
	}
	tbl, err := cna.NewTable(bins)
	assert.NoError(t, err)
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)

	byChrom := map[string][]cna.Segment{}
	for _, seg := range res.Segments {
		byChrom[seg.Chrom] = append(byChrom[seg.Chrom], seg)
	}
	for chrom, segs := range byChrom {
		if segs[0].Start != 0 {
			t.Errorf("%s: first segment starts at %d", chrom, segs[0].Start)
		}
		for i := 1; i < len(segs); i++ {
			if segs[i].Start != segs[i-1].End {
				t.Errorf("%s: gap or overlap at segment %d", chrom, i)
			}
		}
		if segs[len(segs)-1].End != 100*100 {
			t.Errorf("%s: last segment ends at %d", chrom, segs[len(segs)-1].End)
		}
		var nbins int
		for _, seg := range segs {
			nbins += seg.NBins
		}
		expect.EQ(t, nbins, 100)
	}
	// chr1 carries a genuine step at bin 50.
	expect.True(t, len(byChrom["chr1"]) >= 2)
}

func TestDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vals := make([]float64, 300)
	for i := range vals {
		vals[i] = rng.NormFloat64() * 0.3
		if i > 120 && i < 200 {
			vals[i] += 0.6
		}
	}
	tbl := makeTable(t, "chr1", vals)
	a, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	b, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, a.Segments, b.Segments)

	// Parallelism must not change the result: per-chromosome RNG seeds
	// depend only on table position.
	opts := DefaultOpts
	opts.Parallelism = 1
	c, err := Segment(context.Background(), tbl, opts)
	assert.NoError(t, err)
	assert.EQ(t, a.Segments, c.Segments)
}

func TestMinBins(t *testing.T) {
	// Below MinBins the interval is never tested, whatever the
	// contrast.
	tbl := makeTable(t, "chr1", []float64{0, 3, 3})
	res, err := Segment(context.Background(), tbl, DefaultOpts)
	assert.NoError(t, err)
	assert.EQ(t, len(res.Segments), 1)
	expect.EQ(t, res.Segments[0].NBins, 3)
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tbl := makeTable(t, "chr1", []float64{0, 0, 1, 1})
	_, err := Segment(ctx, tbl, DefaultOpts)
	expect.True(t, err != nil)
}

func TestBestSplitLeftmostTie(t *testing.T) {
	// Symmetric data: splits at 1 and 3 tie; the leftmost must win.
	vals := []float64{1, 0, 0, 1}
	weights := []float64{1, 1, 1, 1}
	_, idx := bestSplit(vals, weights)
	expect.EQ(t, idx, 1)
}

func TestBestSplitWeighted(t *testing.T) {
	// A heavy outlier cannot drag the split when its weight is zeroed.
	vals := []float64{0, 0, 9, 1, 1, 1, 0, 0, 0}
	weights := []float64{1, 1, 0, 1, 1, 1, 1, 1, 1}
	_, idx := bestSplit(vals, weights)
	// Best contrast among weighted bins separates the run of ones
	// (indices 3..5) from the zeros; split lands at its boundary.
	expect.True(t, idx == 3 || idx == 6)
}

func TestStatsMerge(t *testing.T) {
	a := Stats{Chromosomes: 1, UsableBins: 10, SplitsTested: 3}
	b := Stats{Chromosomes: 2, MaskedBins: 4, SplitsAccepted: 1}
	m := a.Merge(b)
	expect.EQ(t, m, Stats{
		Chromosomes: 3, UsableBins: 10, MaskedBins: 4,
		SplitsTested: 3, SplitsAccepted: 1,
	})
}
