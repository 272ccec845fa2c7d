// Package review owns the low-confidence queue: the report written by each
// run and the interactive triage that turns queued items into manual
// renames or permanent ignores.
//
// Decisions are computed by Decide, a pure function over an Item and the
// user's input, so the triage rules are testable without a terminal.
// Session drives a Prompter over the queue and persists decisions through
// overrides.Store when the queue is exhausted, the user quits, or the
// context is cancelled.
package review
