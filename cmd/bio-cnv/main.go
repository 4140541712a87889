package main

// bio-cnv runs the copy-number inference pipeline on one sample:
//
//   1. bias correction: normalize per-bin coverage against a pooled
//      reference and remove GC / repeat / density trends.
//   2. outlier smoothing: down-weight single-bin artifacts.
//   3. segmentation: recursive change-point detection with a
//      permutation significance test.
//   4. calling: map segment ratios to integer copy numbers under a
//      purity/ploidy model.
//
// Example 1: full run.
//
//    bio-cnv -coverage=sample.cnr -reference=ref.cnn -segments-output=sample.cns -calls-output=sample.call.cns
//
// Example 2: re-call an existing segmentation with different purity.
//
//    bio-cnv -segments=sample.cns -purity=0.4 -calls-output=sample.call.cns

import (
	"context"
	"flag"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/cnv/call"
	"github.com/grailbio/cnv/cna"
	"github.com/grailbio/cnv/encoding/cnvtsv"
	"github.com/grailbio/cnv/fix"
	"github.com/grailbio/cnv/segment"
	"github.com/grailbio/cnv/smooth"
)

// Collection of options set via cmdline flags.
type cnvFlags struct {
	coveragePath  string
	referencePath string
	segmentsPath  string

	correctedOutputPath string
	segmentsOutputPath  string
	callsOutputPath     string

	skipSmooth bool
	centerMode string
}

func parseCenterMode(s string) call.CenterMode {
	switch s {
	case "none":
		return call.CenterNone
	case "median":
		return call.CenterMedian
	case "mean":
		return call.CenterMean
	}
	log.Fatalf("invalid -center %q (want none, median, or mean)", s)
	return call.CenterNone
}

// runPipeline produces segments from raw coverage.
func runPipeline(ctx context.Context, flags cnvFlags,
	fixOpts fix.Opts, smoothOpts smooth.Opts, segOpts segment.Opts) []cna.Segment {
	tbl, err := cnvtsv.ReadCoverage(ctx, flags.coveragePath)
	if err != nil {
		log.Fatalf("read coverage: %v", err)
	}
	ref, err := cnvtsv.ReadReference(ctx, flags.referencePath)
	if err != nil {
		log.Fatalf("read reference: %v", err)
	}
	log.Printf("Loaded %d bins from %s", tbl.Len(), flags.coveragePath)

	fixed, err := fix.Correct(tbl, ref, fixOpts)
	if err != nil {
		log.Fatalf("bias correction: %v", err)
	}
	if !flags.skipSmooth {
		fixed = smooth.Smooth(fixed, ref, smoothOpts)
	}
	if flags.correctedOutputPath != "" {
		if err := cnvtsv.WriteCoverage(ctx, flags.correctedOutputPath, fixed); err != nil {
			log.Fatalf("write corrected coverage: %v", err)
		}
	}

	result, err := segment.Segment(ctx, fixed, segOpts)
	if err != nil {
		log.Fatalf("segmentation: %v", err)
	}
	for _, w := range result.Warnings {
		log.Error.Printf("%s", w.String())
	}
	log.Printf("Stats: segmentation: %+v", result.Stats)
	return result.Segments
}

func main() {
	flags := cnvFlags{}
	flag.StringVar(&flags.coveragePath, "coverage", "", "Per-bin coverage table (.cnr) for the sample.")
	flag.StringVar(&flags.referencePath, "reference", "", "Pooled reference baseline (.cnn).")
	flag.StringVar(&flags.segmentsPath, "segments", "", `Existing segment table (.cns). If set, correction and
segmentation are skipped and only calling runs; -coverage and -reference are ignored.`)
	flag.StringVar(&flags.correctedOutputPath, "corrected-output", "", "If set, write the corrected per-bin table here.")
	flag.StringVar(&flags.segmentsOutputPath, "segments-output", "", "Segment table output (.cns).")
	flag.StringVar(&flags.callsOutputPath, "calls-output", "", "Copy-number call table output (.call.cns).")
	flag.BoolVar(&flags.skipSmooth, "skip-smooth", false, "Skip the outlier down-weighting stage.")
	flag.StringVar(&flags.centerMode, "center", "none", "Re-centering before calling: none, median, or mean.")

	fixOpts := fix.DefaultOpts
	flag.Float64Var(&fixOpts.WindowFraction, "fix-window-fraction", fix.DefaultOpts.WindowFraction,
		"Fraction of bins in each rolling-median bias window.")
	flag.BoolVar(&fixOpts.SkipGC, "no-gc", fix.DefaultOpts.SkipGC, "Skip GC-content bias correction.")
	flag.BoolVar(&fixOpts.SkipRepeat, "no-repeat", fix.DefaultOpts.SkipRepeat, "Skip repeat-fraction bias correction.")
	flag.BoolVar(&fixOpts.SkipDensity, "no-density", fix.DefaultOpts.SkipDensity, "Skip bin-density bias correction.")

	smoothOpts := smooth.DefaultOpts
	flag.Float64Var(&smoothOpts.MADFactor, "outlier-mad-factor", smooth.DefaultOpts.MADFactor,
		"Deviations (in scaled MADs) from the rolling median beyond which a bin is down-weighted.")
	flag.IntVar(&smoothOpts.BaseHalfWindow, "outlier-half-window", smooth.DefaultOpts.BaseHalfWindow,
		"Half-width in bins of the rolling outlier window at full target density.")

	segOpts := segment.DefaultOpts
	flag.Float64Var(&segOpts.Alpha, "alpha", segment.DefaultOpts.Alpha, "Significance threshold for accepting a split.")
	flag.IntVar(&segOpts.Permutations, "permutations", segment.DefaultOpts.Permutations,
		"Permutations evaluated per candidate split.")
	flag.IntVar(&segOpts.MinBins, "min-bins", segment.DefaultOpts.MinBins, "Smallest interval, in usable bins, tested for a split.")
	flag.Int64Var(&segOpts.Seed, "seed", segment.DefaultOpts.Seed, "Seed for the permutation test.")
	flag.IntVar(&segOpts.Parallelism, "parallelism", 0, "Max chromosomes segmented concurrently. 0 means unbounded.")

	callOpts := call.DefaultOpts
	flag.Float64Var(&callOpts.Purity, "purity", call.DefaultOpts.Purity, "Tumor-cell fraction in (0, 1].")
	flag.IntVar(&callOpts.Ploidy, "ploidy", call.DefaultOpts.Ploidy, "Neutral copy number of the sample.")
	flag.BoolVar(&callOpts.IsReferenceMale, "male-reference", false, "The pooled reference was built from male samples.")
	flag.BoolVar(&callOpts.IsSampleFemale, "female-sample", false, "The sample is female.")
	flag.Float64Var(&callOpts.MinSegmentWeight, "min-segment-weight", call.DefaultOpts.MinSegmentWeight,
		"Segments below this total weight are reported without an integer copy number.")
	flag.IntVar(&callOpts.MaxCopyNumber, "max-copy-number", call.DefaultOpts.MaxCopyNumber, "Largest candidate copy number.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()
	callOpts.Center = parseCenterMode(flags.centerMode)

	var segs []cna.Segment
	if flags.segmentsPath != "" {
		var err error
		if segs, err = cnvtsv.ReadSegments(ctx, flags.segmentsPath); err != nil {
			log.Fatalf("read segments: %v", err)
		}
		log.Printf("Loaded %d segments from %s", len(segs), flags.segmentsPath)
	} else {
		if flags.coveragePath == "" || flags.referencePath == "" {
			flag.Usage()
			log.Error.Printf("either -segments or both -coverage and -reference are required")
			os.Exit(2)
		}
		segs = runPipeline(ctx, flags, fixOpts, smoothOpts, segOpts)
	}
	if flags.segmentsOutputPath != "" {
		if err := cnvtsv.WriteSegments(ctx, flags.segmentsOutputPath, segs); err != nil {
			log.Fatalf("write segments: %v", err)
		}
		log.Printf("Wrote %d segments to %s", len(segs), flags.segmentsOutputPath)
	}

	if flags.callsOutputPath != "" {
		calls, err := call.Call(segs, callOpts)
		if err != nil {
			log.Fatalf("calling: %v", err)
		}
		if err := cnvtsv.WriteCalls(ctx, flags.callsOutputPath, calls); err != nil {
			log.Fatalf("write calls: %v", err)
		}
		log.Printf("Wrote %d calls to %s", len(calls), flags.callsOutputPath)
	}
	log.Printf("All done")
}
