package segment

// Stats summarizes one segmentation run.
type Stats struct {
	// Chromosomes is the number of chromosomes segmented (skipped
	// chromosomes are not counted).
	Chromosomes int
	// UsableBins and MaskedBins count the nonzero-weight and
	// zero-weight bins seen.
	UsableBins int
	MaskedBins int
	// SplitsTested is the number of candidate intervals scanned for a
	// split; SplitsAccepted is how many passed the permutation gate.
	SplitsTested   int
	SplitsAccepted int
	// PermutationsRun totals the permutations evaluated across all
	// significance tests.
	PermutationsRun int
}

// Merge adds the field values of the two Stats objects and creates new
// Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Chromosomes += o.Chromosomes
	s.UsableBins += o.UsableBins
	s.MaskedBins += o.MaskedBins
	s.SplitsTested += o.SplitsTested
	s.SplitsAccepted += o.SplitsAccepted
	s.PermutationsRun += o.PermutationsRun
	return s
}
