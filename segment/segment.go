// Package segment partitions a corrected coverage table into
// constant-level segments by recursive binary change-point detection.
//
// Within each candidate interval the split maximizing a weighted
// two-sample t-type statistic is located; the split is accepted only if
// it beats a permutation-derived significance threshold. Accepted splits
// recurse on both sides. Chromosomes are segmented independently and in
// parallel: a segment never spans a chromosome boundary.
//
// The test statistic and its default threshold are a documented policy
// of this package, not a bit-exact reimplementation of any existing
// change-point library.
package segment

import (
	"context"
	"math/rand"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/cnv/cna"
)

// Opts controls segmentation.
type Opts struct {
	// Alpha is the significance threshold for accepting a split: the
	// observed statistic must exceed the (1-Alpha) quantile of the
	// permuted statistics.
	Alpha float64
	// Permutations is the number of random permutations evaluated per
	// candidate split.
	Permutations int
	// MinBins is the smallest interval, in usable bins, that will be
	// tested for a split.
	MinBins int
	// Seed makes runs reproducible. Each chromosome derives its own
	// generator from Seed and the chromosome's position in the table,
	// so results do not depend on how many chromosomes run in parallel.
	Seed int64
	// Parallelism bounds the number of chromosomes segmented
	// concurrently. Zero means one goroutine per chromosome.
	Parallelism int
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	Alpha:        0.01,
	Permutations: 1000,
	MinBins:      4,
	Seed:         1,
}

// Result is the output of one segmentation run.
type Result struct {
	Segments []cna.Segment
	// Warnings records chromosomes skipped for lack of usable bins.
	Warnings []cna.InsufficientDataWarning
	Stats    Stats
}

// Segment partitions tbl into segments, one chromosome at a time.
// Chromosomes are processed concurrently; ctx cancellation is honored
// between per-chromosome units. A chromosome with no nonzero-weight bins
// yields no segments and an InsufficientDataWarning instead of failing
// the run.
func Segment(ctx context.Context, tbl *cna.Table, opts Opts) (*Result, error) {
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		opts.Alpha = DefaultOpts.Alpha
	}
	if opts.Permutations <= 0 {
		opts.Permutations = DefaultOpts.Permutations
	}
	if opts.MinBins < 2 {
		opts.MinBins = DefaultOpts.MinBins
	}

	chroms := tbl.Chroms()
	parallelism := opts.Parallelism
	if parallelism <= 0 || parallelism > len(chroms) {
		parallelism = len(chroms)
	}
	if parallelism == 0 {
		return &Result{}, nil
	}

	type chromResult struct {
		segs    []cna.Segment
		warning *cna.InsufficientDataWarning
		stats   Stats
	}
	results := make([]chromResult, len(chroms))
	err := traverse.Each(parallelism, func(jobIdx int) error {
		lo := (jobIdx * len(chroms)) / parallelism
		hi := ((jobIdx + 1) * len(chroms)) / parallelism
		for c := lo; c < hi; c++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			cr := chroms[c]
			bins := tbl.Bins[cr.Start:cr.End]
			if tbl.UsableWeight(cr.Start, cr.End) <= 0 {
				results[c].warning = &cna.InsufficientDataWarning{
					Chrom:  cr.Chrom,
					Reason: "no bins with nonzero weight",
				}
				continue
			}
			rng := rand.New(rand.NewSource(opts.Seed + int64(c)))
			sgr := newSegmenter(bins, opts, rng)
			results[c].segs = sgr.run()
			results[c].stats = sgr.stats
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for c := range results {
		res.Segments = append(res.Segments, results[c].segs...)
		if results[c].warning != nil {
			log.Printf("segment: skipping %s: %s", chroms[c].Chrom, results[c].warning.Reason)
			res.Warnings = append(res.Warnings, *results[c].warning)
		}
		res.Stats = res.Stats.Merge(results[c].stats)
	}
	return res, nil
}
