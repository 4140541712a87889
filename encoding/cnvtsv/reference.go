package cnvtsv

import (
	"context"
	"io"

	"github.com/grailbio/cnv/cna"
	"github.com/pkg/errors"
)

// referenceRow mirrors one line of a reference baseline table. The
// spread column records the reference pool's depth dispersion per bin;
// it feeds bin weighting during bias correction.
type referenceRow struct {
	Chromosome     string  `tsv:"chromosome"`
	Start          int64   `tsv:"start"`
	End            int64   `tsv:"end"`
	Gene           string  `tsv:"gene"`
	ExpectedDepth  float64 `tsv:"expected_depth"`
	GC             float64 `tsv:"gc"`
	RepeatFraction float64 `tsv:"repeat_fraction"`
	Density        float64 `tsv:"density"`
	Spread         float64 `tsv:"spread"`
}

// ReadReference loads a pooled reference baseline.
func ReadReference(ctx context.Context, path string) (*cna.Reference, error) {
	r, closer, err := openReader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closer() // nolint: errcheck
	tr := newReader(r)

	ref := &cna.Reference{}
	var row referenceRow
	for {
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "read reference %s", path)
		}
		ref.Bins = append(ref.Bins, cna.ReferenceBin{
			Chrom:          row.Chromosome,
			Start:          int(row.Start),
			End:            int(row.End),
			Gene:           row.Gene,
			ExpectedDepth:  row.ExpectedDepth,
			GC:             row.GC,
			RepeatFraction: row.RepeatFraction,
			Density:        row.Density,
			Spread:         row.Spread,
		})
	}
	return ref, nil
}

// WriteReference writes a reference baseline table. It exists mainly
// for tests and for regenerating inputs; baselines are normally
// produced by the cohort reference builder.
func WriteReference(ctx context.Context, path string, ref *cna.Reference) (err error) {
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
	if err = writeHeader(tw, "chromosome", "start", "end", "gene",
		"expected_depth", "gc", "repeat_fraction", "density", "spread"); err != nil {
		return err
	}
	for i := range ref.Bins {
		b := &ref.Bins[i]
		tw.WriteString(b.Chrom)
		tw.WriteInt64(int64(b.Start))
		tw.WriteInt64(int64(b.End))
		tw.WriteString(b.Gene)
		tw.WriteFloat64(b.ExpectedDepth, 'g', -1)
		tw.WriteFloat64(b.GC, 'g', -1)
		tw.WriteFloat64(b.RepeatFraction, 'g', -1)
		tw.WriteFloat64(b.Density, 'g', -1)
		tw.WriteFloat64(b.Spread, 'g', -1)
		if err = tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
