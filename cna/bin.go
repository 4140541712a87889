package cna

import "strings"

// AntitargetLabel is the gene label given to bins covering the sparse
// off-target ("background") regions between capture targets.
const AntitargetLabel = "Antitarget"

// Bin is one genomic interval with its observed depth and normalized
// log2 copy ratio. Bins are immutable once a stage has produced them.
type Bin struct {
	// Chrom is the chromosome name, e.g. "chr7" or "7".
	Chrom string
	// Start and End delimit the zero-based, half-open interval.
	Start, End int
	// Gene is the target's gene label, or AntitargetLabel for
	// background bins.
	Gene string
	// Depth is the raw mean read depth over the interval.
	Depth float64
	// Log2 is the normalized log2 ratio of observed depth over the
	// reference baseline's expected depth. Zero until normalization.
	Log2 float64
	// Weight is a reliability proxy in [0, 1]. Downstream stages treat
	// weight-zero bins as positionally present but evidence-free.
	Weight float64
	// LowDepth marks bins excluded from trend fitting because the bin
	// or its baseline had zero or missing depth. Such bins always carry
	// Weight 0.
	LowDepth bool
}

// Span returns the interval length in bases.
func (b *Bin) Span() int { return b.End - b.Start }

// IsAntitarget reports whether the bin is an off-target background bin.
func (b *Bin) IsAntitarget() bool { return b.Gene == AntitargetLabel }

// IsChrX reports whether chrom names the X chromosome, with or without
// the "chr" prefix.
func IsChrX(chrom string) bool {
	c := strings.ToLower(chrom)
	return c == "chrx" || c == "x"
}

// IsChrY reports whether chrom names the Y chromosome.
func IsChrY(chrom string) bool {
	c := strings.ToLower(chrom)
	return c == "chry" || c == "y"
}
