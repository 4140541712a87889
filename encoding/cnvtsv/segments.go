package cnvtsv

import (
	"context"
	"io"
	"strconv"

	"github.com/grailbio/cnv/cna"
	"github.com/pkg/errors"
)

// segmentRow mirrors one line of a segment table.
type segmentRow struct {
	Chromosome string  `tsv:"chromosome"`
	Start      int64   `tsv:"start"`
	End        int64   `tsv:"end"`
	Gene       string  `tsv:"gene"`
	Log2       float64 `tsv:"log2"`
	NBins      int64   `tsv:"n_bins"`
	Weight     float64 `tsv:"weight"`
}

// ReadSegments loads a segment table, e.g. to re-run calling alone on
// an earlier segmentation.
func ReadSegments(ctx context.Context, path string) ([]cna.Segment, error) {
	r, closer, err := openReader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closer() // nolint: errcheck
	tr := newReader(r)

	var segs []cna.Segment
	var row segmentRow
	for {
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "read segments %s", path)
		}
		segs = append(segs, cna.Segment{
			Chrom:  row.Chromosome,
			Start:  int(row.Start),
			End:    int(row.End),
			Gene:   row.Gene,
			Log2:   row.Log2,
			NBins:  int(row.NBins),
			Weight: row.Weight,
		})
	}
	return segs, nil
}

// WriteSegments writes a segment table.
func WriteSegments(ctx context.Context, path string, segs []cna.Segment) (err error) {
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
	if err = writeHeader(tw, "chromosome", "start", "end", "gene", "log2", "n_bins", "weight"); err != nil {
		return err
	}
	for i := range segs {
		s := &segs[i]
		tw.WriteString(s.Chrom)
		tw.WriteInt64(int64(s.Start))
		tw.WriteInt64(int64(s.End))
		tw.WriteString(s.Gene)
		tw.WriteFloat64(s.Log2, 'g', -1)
		tw.WriteInt64(int64(s.NBins))
		tw.WriteFloat64(s.Weight, 'g', -1)
		if err = tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteCalls writes a call table: the segment columns plus the integer
// copy number and its confidence. Unknown segments are written with "-"
// in the copy_number column so the table stays row-complete for
// downstream tooling.
func WriteCalls(ctx context.Context, path string, calls []cna.Call) (err error) {
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
	if err = writeHeader(tw, "chromosome", "start", "end", "gene", "log2",
		"n_bins", "weight", "copy_number", "probability"); err != nil {
		return err
	}
	for i := range calls {
		c := &calls[i]
		tw.WriteString(c.Chrom)
		tw.WriteInt64(int64(c.Start))
		tw.WriteInt64(int64(c.End))
		tw.WriteString(c.Gene)
		tw.WriteFloat64(c.Log2, 'g', -1)
		tw.WriteInt64(int64(c.NBins))
		tw.WriteFloat64(c.Weight, 'g', -1)
		if c.Unknown {
			tw.WriteString("-")
			tw.WriteString("-")
		} else {
			tw.WriteString(strconv.Itoa(c.CopyNumber))
			tw.WriteFloat64(c.Confidence, 'f', 4)
		}
		if err = tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
