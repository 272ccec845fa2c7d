// Package resolve turns the files in each sport directory into rename
// operations and review items.
//
// Per sport, in configured order, the Pipeline fetches the catalog, builds
// the canonical index, discovers files, and partitions them: ignored files
// are dropped, custom mappings become "manual" operations, the exact
// matcher handles index hits, and the AI matcher gets what is left in
// batches. AI results at or above the confidence threshold become
// operations; everything else is queued for review.
//
// Failures are recovered per sport or per batch and reported through
// CategoryReport, so one bad category never stops the run.
package resolve
