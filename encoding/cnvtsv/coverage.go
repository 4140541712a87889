package cnvtsv

import (
	"context"
	"io"

	"github.com/grailbio/cnv/cna"
	"github.com/pkg/errors"
)

// coverageRow mirrors one line of a coverage table.
type coverageRow struct {
	Chromosome string  `tsv:"chromosome"`
	Start      int64   `tsv:"start"`
	End        int64   `tsv:"end"`
	Gene       string  `tsv:"gene"`
	Depth      float64 `tsv:"depth"`
	Log2       float64 `tsv:"log2"`
	Weight     float64 `tsv:"weight"`
}

// ReadCoverage loads a sample coverage table and validates its bin
// ordering.
func ReadCoverage(ctx context.Context, path string) (*cna.Table, error) {
	r, closer, err := openReader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closer() // nolint: errcheck
	tr := newReader(r)

	var bins []cna.Bin
	var row coverageRow
	for {
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "read coverage %s", path)
		}
		bins = append(bins, cna.Bin{
			Chrom:  row.Chromosome,
			Start:  int(row.Start),
			End:    int(row.End),
			Gene:   row.Gene,
			Depth:  row.Depth,
			Log2:   row.Log2,
			Weight: row.Weight,
		})
	}
	tbl, err := cna.NewTable(bins)
	if err != nil {
		return nil, errors.Wrapf(err, "coverage %s", path)
	}
	return tbl, nil
}

// WriteCoverage writes a coverage table. Low-confidence bins are
// written with their zero weight; the flag itself is implied by it.
func WriteCoverage(ctx context.Context, path string, tbl *cna.Table) (err error) {
	w, closer, err := openWriter(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()
	tw := newWriter(w)
	if err = writeHeader(tw, "chromosome", "start", "end", "gene", "depth", "log2", "weight"); err != nil {
		return err
	}
	for i := range tbl.Bins {
		b := &tbl.Bins[i]
		tw.WriteString(b.Chrom)
		tw.WriteInt64(int64(b.Start))
		tw.WriteInt64(int64(b.End))
		tw.WriteString(b.Gene)
		tw.WriteFloat64(b.Depth, 'g', -1)
		tw.WriteFloat64(b.Log2, 'g', -1)
		tw.WriteFloat64(b.Weight, 'g', -1)
		if err = tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
