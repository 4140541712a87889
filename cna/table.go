package cna

// Table is an ordered sample coverage table: bins sorted by (chromosome,
// start), non-overlapping within the target and antitarget subsets.
//
// The chromosome order of the input is preserved as-is (typically the
// reference sequence dictionary order); Table does not impose a sort of
// its own across chromosomes beyond grouping.
type Table struct {
	Bins []Bin
}

// NewTable validates bins and wraps them in a Table. The bins slice is
// retained, not copied.
func NewTable(bins []Bin) (*Table, error) {
	t := &Table{Bins: bins}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) validate() error {
	seen := map[string]int{} // chrom -> index of its last bin
	var prevChrom string
	for i := range t.Bins {
		b := &t.Bins[i]
		if b.End < b.Start {
			return &TableError{Index: i, Reason: "end before start"}
		}
		if b.Chrom != prevChrom {
			if last, ok := seen[b.Chrom]; ok && last != i-1 {
				return &TableError{Index: i, Reason: "chromosome " + b.Chrom + " split into multiple blocks"}
			}
			prevChrom = b.Chrom
		} else if i > 0 {
			prev := &t.Bins[i-1]
			if b.Start < prev.Start {
				return &TableError{Index: i, Reason: "bins not sorted by start"}
			}
			// Target and antitarget bins may interleave; overlap is only
			// forbidden within each subset.
			if b.IsAntitarget() == prev.IsAntitarget() && b.Start < prev.End {
				return &TableError{Index: i, Reason: "overlapping bins"}
			}
		}
		seen[b.Chrom] = i
	}
	return nil
}

// Len returns the number of bins.
func (t *Table) Len() int { return len(t.Bins) }

// Clone returns a deep copy of the table. Stages clone their input
// before deriving new values so the input remains immutable.
func (t *Table) Clone() *Table {
	bins := make([]Bin, len(t.Bins))
	copy(bins, t.Bins)
	return &Table{Bins: bins}
}

// ChromRange locates the bins of one chromosome within a Table.
type ChromRange struct {
	Chrom string
	// Start and End index into Table.Bins, half-open.
	Start, End int
}

// Chroms partitions the table into per-chromosome index ranges, in table
// order. Segmentation and other chromosome-local operations iterate over
// this partition; the ranges are disjoint and cover all bins.
func (t *Table) Chroms() []ChromRange {
	var out []ChromRange
	for i := 0; i < len(t.Bins); {
		j := i + 1
		for j < len(t.Bins) && t.Bins[j].Chrom == t.Bins[i].Chrom {
			j++
		}
		out = append(out, ChromRange{Chrom: t.Bins[i].Chrom, Start: i, End: j})
		i = j
	}
	return out
}

// Targets returns a new table holding only on-target bins.
func (t *Table) Targets() *Table {
	return t.subset(func(b *Bin) bool { return !b.IsAntitarget() })
}

// Antitargets returns a new table holding only background bins.
func (t *Table) Antitargets() *Table {
	return t.subset(func(b *Bin) bool { return b.IsAntitarget() })
}

func (t *Table) subset(keep func(*Bin) bool) *Table {
	var bins []Bin
	for i := range t.Bins {
		if keep(&t.Bins[i]) {
			bins = append(bins, t.Bins[i])
		}
	}
	return &Table{Bins: bins}
}

// UsableWeight sums the weights of the bins in [start, end).
func (t *Table) UsableWeight(start, end int) float64 {
	var w float64
	for i := start; i < end; i++ {
		w += t.Bins[i].Weight
	}
	return w
}
