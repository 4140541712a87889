package cna

import "fmt"

// AlignmentError reports that a sample table and the reference baseline
// do not describe the same bin set. It is fatal: the run cannot proceed
// with mismatched coordinates.
type AlignmentError struct {
	// Index is the first mismatching bin index, or -1 if the tables
	// differ in length.
	Index  int
	Detail string
}

func (e *AlignmentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("sample and reference bins do not align: %s", e.Detail)
	}
	return fmt.Sprintf("sample and reference bins do not align at bin %d: %s", e.Index, e.Detail)
}

// DegenerateModelError reports caller parameters outside the model's
// domain (purity outside (0, 1], ploidy <= 0). It is raised before any
// segment is scored.
type DegenerateModelError struct {
	Param string
	Value float64
}

func (e *DegenerateModelError) Error() string {
	return fmt.Sprintf("degenerate calling model: %s=%g", e.Param, e.Value)
}

// TableError reports a structural violation in a bin table (unsorted,
// overlapping, or malformed intervals).
type TableError struct {
	Index  int
	Reason string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("bin table invalid at index %d: %s", e.Index, e.Reason)
}

// InsufficientDataWarning records a chromosome (or other unit) whose
// usable weight was zero or near zero. It is not an error: the unit is
// skipped and the rest of the run proceeds.
type InsufficientDataWarning struct {
	Chrom  string
	Reason string
}

func (w InsufficientDataWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Chrom, w.Reason)
}
