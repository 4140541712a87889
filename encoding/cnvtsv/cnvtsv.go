// Package cnvtsv reads and writes the tab-delimited tables exchanged
// with the pipeline's external collaborators: per-bin coverage (.cnr),
// the pooled reference baseline (.cnn), segments (.cns), and
// copy-number calls (.call.cns).
//
// Every format has a header row and one row per bin or segment. Paths
// ending in ".gz" are transparently gzip-compressed in both directions.
package cnvtsv

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
)

// openReader opens path for reading, inserting a gzip stage when the
// filename calls for it. The returned closer closes the whole stack.
func openReader(ctx context.Context, path string) (io.Reader, func() error, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	r := f.Reader(ctx)
	if !strings.HasSuffix(path, ".gz") {
		return r, func() error { return f.Close(ctx) }, nil
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		_ = f.Close(ctx)
		return nil, nil, errors.E(err, path+": not a valid gzip file")
	}
	closer := func() error {
		once := errors.Once{}
		once.Set(gz.Close())
		once.Set(f.Close(ctx))
		return once.Err()
	}
	return gz, closer, nil
}

// openWriter opens path for writing, with gzip compression when the
// filename ends in ".gz".
func openWriter(ctx context.Context, path string) (io.Writer, func() error, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	w := f.Writer(ctx)
	if !strings.HasSuffix(path, ".gz") {
		return w, func() error { return f.Close(ctx) }, nil
	}
	gz := gzip.NewWriter(w)
	closer := func() error {
		once := errors.Once{}
		once.Set(gz.Close())
		once.Set(f.Close(ctx))
		return once.Err()
	}
	return gz, closer, nil
}

func newWriter(w io.Writer) *tsv.Writer {
	return tsv.NewWriter(w)
}

func newReader(r io.Reader) *tsv.Reader {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true
	return tr
}

// writeHeader emits one header row of column names.
func writeHeader(w *tsv.Writer, cols ...string) error {
	for _, c := range cols {
		w.WriteString(c)
	}
	return w.EndLine()
}
