package cna

import (
	"sort"
	"strings"
)

// Segment is a run of consecutive bins sharing one copy-ratio level.
// Within a chromosome, segments are contiguous and non-overlapping, and
// their union covers every input bin of that chromosome.
type Segment struct {
	Chrom      string
	Start, End int
	// Gene summarizes the distinct non-background gene labels of the
	// constituent bins, comma-joined, or "-" if none.
	Gene string
	// Log2 is the weighted mean log2 ratio of the constituent bins.
	Log2 float64
	// NBins is the number of constituent bins, including weight-zero
	// bins carried for contiguity.
	NBins int
	// Weight is the summed weight of the constituent bins.
	Weight float64
}

// SummarizeGenes derives a segment's gene label from its bins:
// the unique non-background labels in alphabetical order.
func SummarizeGenes(bins []Bin) string {
	seen := map[string]bool{}
	var names []string
	for i := range bins {
		g := bins[i].Gene
		if g == "" || g == "-" || g == AntitargetLabel {
			continue
		}
		if !seen[g] {
			seen[g] = true
			names = append(names, g)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Call is a Segment with an inferred integer copy number.
type Call struct {
	Segment
	// CopyNumber is the inferred tumor copy number, >= 0. Meaningless
	// when Unknown is set.
	CopyNumber int
	// Absolute is the continuous copy-number estimate before rounding,
	// after purity and ploidy rescaling.
	Absolute float64
	// AdjustedLog2 is the log2 ratio the called integer copy number
	// would produce at the given purity and ploidy.
	AdjustedLog2 float64
	// Confidence scores how well the observed ratio matches the called
	// level, in [0, 1].
	Confidence float64
	// Unknown marks segments whose weight was below the calling
	// threshold; they are reported but carry no integer assignment.
	Unknown bool
}
