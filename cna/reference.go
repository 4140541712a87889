package cna

// ReferenceBin is one bin of the pooled reference baseline, carrying the
// expected depth and the fixed covariate schema used for bias
// correction. Covariates are explicit named fields; the regression
// semantics depend on exactly this set.
type ReferenceBin struct {
	Chrom      string
	Start, End int
	Gene       string
	// ExpectedDepth is the central depth of the reference pool for this
	// bin. Zero means the pool had no usable coverage here.
	ExpectedDepth float64
	// GC is the fraction of G/C bases in the bin sequence, in [0, 1].
	GC float64
	// RepeatFraction is the fraction of repeat-masked (soft-masked)
	// bases in the bin sequence, in [0, 1].
	RepeatFraction float64
	// Density is the local bin density: the fraction of the surrounding
	// genomic window occupied by bins, in (0, 1]. Target regions are
	// dense, antitarget regions sparse.
	Density float64
	// Spread is the dispersion of depth across the reference pool,
	// used to derive bin weights.
	Spread float64
}

// Reference is the read-only baseline shared by all samples of one assay
// design. It is safe for concurrent use; no pipeline stage mutates it.
type Reference struct {
	Bins []ReferenceBin
}

// Len returns the number of baseline bins.
func (r *Reference) Len() int { return len(r.Bins) }

// AlignWith verifies that the sample table and the baseline describe the
// same ordered interval set. Any divergence is unrecoverable: silently
// realigning mismatched coordinates would corrupt every downstream
// stage, so the first mismatch is returned as an *AlignmentError.
func (r *Reference) AlignWith(t *Table) error {
	if len(r.Bins) != len(t.Bins) {
		return &AlignmentError{Index: -1, Detail: "bin counts differ"}
	}
	for i := range r.Bins {
		rb, sb := &r.Bins[i], &t.Bins[i]
		if rb.Chrom != sb.Chrom || rb.Start != sb.Start || rb.End != sb.End {
			return &AlignmentError{Index: i, Detail: "interval mismatch"}
		}
	}
	return nil
}
