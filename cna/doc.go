// Package cna defines the tabular data model shared by the copy-number
// pipeline stages: per-bin coverage tables, the pooled reference baseline,
// segments, and integer copy-number calls.
//
// All tables are flat, chromosome-sorted slices of records. Stages never
// mutate a table in place; each stage returns a fresh table so that a run
// can be re-entered at any stage and tables can be shared across
// concurrently processed samples.
//
// Coordinates are zero-based, half-open [Start, End), matching BED.
package cna
