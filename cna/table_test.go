package cna

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func mkBin(chrom string, start, end int, gene string) Bin {
	return Bin{Chrom: chrom, Start: start, End: end, Gene: gene, Weight: 1}
}

func TestNewTableValid(t *testing.T) {
	tbl, err := NewTable([]Bin{
		mkBin("chr1", 0, 100, "TP53"),
		mkBin("chr1", 100, 200, "TP53"),
		mkBin("chr2", 0, 50, "MYC"),
	})
	assert.NoError(t, err)
	expect.EQ(t, tbl.Len(), 3)
}

func TestNewTableInterleavedAntitargets(t *testing.T) {
	// Antitarget bins may overlap target bins, just not each other.
	_, err := NewTable([]Bin{
		mkBin("chr1", 0, 1000, AntitargetLabel),
		mkBin("chr1", 100, 200, "TP53"),
		mkBin("chr1", 200, 300, "TP53"),
		mkBin("chr1", 1000, 5000, AntitargetLabel),
	})
	assert.NoError(t, err)
}

func TestNewTableRejectsOverlap(t *testing.T) {
	_, err := NewTable([]Bin{
		mkBin("chr1", 0, 100, "TP53"),
		mkBin("chr1", 50, 150, "TP53"),
	})
	expect.True(t, err != nil)
	_, ok := err.(*TableError)
	expect.True(t, ok)
}

func TestNewTableRejectsUnsorted(t *testing.T) {
	_, err := NewTable([]Bin{
		mkBin("chr1", 100, 200, "TP53"),
		mkBin("chr1", 0, 100, "TP53"),
	})
	expect.True(t, err != nil)
}

func TestNewTableRejectsSplitChromosome(t *testing.T) {
	_, err := NewTable([]Bin{
		mkBin("chr1", 0, 100, "A"),
		mkBin("chr2", 0, 100, "B"),
		mkBin("chr1", 200, 300, "A"),
	})
	expect.True(t, err != nil)
}

func TestChromsPartition(t *testing.T) {
	tbl, err := NewTable([]Bin{
		mkBin("chr1", 0, 100, "A"),
		mkBin("chr1", 100, 200, "A"),
		mkBin("chrX", 0, 50, "B"),
		mkBin("chr2", 0, 50, "C"),
	})
	assert.NoError(t, err)
	expect.EQ(t, tbl.Chroms(), []ChromRange{
		{Chrom: "chr1", Start: 0, End: 2},
		{Chrom: "chrX", Start: 2, End: 3},
		{Chrom: "chr2", Start: 3, End: 4},
	})
}

func TestTargetAntitargetSubsets(t *testing.T) {
	tbl, err := NewTable([]Bin{
		mkBin("chr1", 0, 1000, AntitargetLabel),
		mkBin("chr1", 100, 200, "TP53"),
	})
	assert.NoError(t, err)
	expect.EQ(t, tbl.Targets().Len(), 1)
	expect.EQ(t, tbl.Antitargets().Len(), 1)
	expect.EQ(t, tbl.Targets().Bins[0].Gene, "TP53")
}

func TestCloneIsDeep(t *testing.T) {
	tbl, err := NewTable([]Bin{mkBin("chr1", 0, 100, "A")})
	assert.NoError(t, err)
	c := tbl.Clone()
	c.Bins[0].Log2 = 1.5
	expect.EQ(t, tbl.Bins[0].Log2, 0.0)
}

func TestSummarizeGenes(t *testing.T) {
	bins := []Bin{
		mkBin("chr1", 0, 100, "TP53"),
		mkBin("chr1", 100, 1000, AntitargetLabel),
		mkBin("chr1", 1000, 1100, "ATM"),
		mkBin("chr1", 1100, 1200, "TP53"),
	}
	expect.EQ(t, SummarizeGenes(bins), "ATM,TP53")
	expect.EQ(t, SummarizeGenes(bins[1:2]), "-")
}

func TestAlignWith(t *testing.T) {
	tbl, err := NewTable([]Bin{
		mkBin("chr1", 0, 100, "A"),
		mkBin("chr1", 100, 200, "A"),
	})
	assert.NoError(t, err)
	ref := &Reference{Bins: []ReferenceBin{
		{Chrom: "chr1", Start: 0, End: 100, ExpectedDepth: 30},
		{Chrom: "chr1", Start: 100, End: 200, ExpectedDepth: 30},
	}}
	assert.NoError(t, ref.AlignWith(tbl))

	short := &Reference{Bins: ref.Bins[:1]}
	err = short.AlignWith(tbl)
	aerr, ok := err.(*AlignmentError)
	assert.True(t, ok)
	expect.EQ(t, aerr.Index, -1)

	shifted := &Reference{Bins: []ReferenceBin{
		{Chrom: "chr1", Start: 0, End: 100},
		{Chrom: "chr1", Start: 150, End: 200},
	}}
	err = shifted.AlignWith(tbl)
	aerr, ok = err.(*AlignmentError)
	assert.True(t, ok)
	expect.EQ(t, aerr.Index, 1)
}

func TestSexChromHelpers(t *testing.T) {
	expect.True(t, IsChrX("chrX"))
	expect.True(t, IsChrX("X"))
	expect.False(t, IsChrX("chr10"))
	expect.True(t, IsChrY("Y"))
	expect.False(t, IsChrY("chrX"))
}
