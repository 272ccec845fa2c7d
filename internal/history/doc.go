// Package history keeps a SQLite journal of every run and the renames it
// applied, so any past run can be reverted, not only the latest one.
//
// The journal is append-only apart from the reverted_at markers written by
// MarkReverted. The single-generation undo_log.json written next to it is
// unaffected.
package history
