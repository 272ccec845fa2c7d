// Package workflow runs the end-to-end commands that touch state: a
// resolution run and an undo.
//
// Runner.Run takes the workspace lock, loads the overrides, resolves every
// sport, applies the renames, and then persists the undo record, the review
// report, and the history journal entry. Runner.Undo reverts either the
// latest undo record or any journaled run. Per-file and per-category
// failures never abort either command; they are collected in the returned
// Summary or UndoOutcome.
package workflow
