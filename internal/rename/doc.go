// Package rename applies resolved renames to the logo tree and reverses them.
//
// Execution is two-phase. Plan computes every target before the filesystem
// is touched, resolving collisions against both the files on disk and the
// targets already claimed by earlier operations in the same batch. Apply
// re-checks each target immediately before renaming, in case something
// outside the run created it, and records an undo entry for every rename
// that succeeds. A failure on one file is logged and collected; it never
// stops the batch.
package rename
