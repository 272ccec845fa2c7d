// Package logging assembles structured slog loggers used across logonorm.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (component, sport, run_id,
// event_type, error_hint, impact) so every component emits the same shape.
// NewNop gives tests and optional wiring a logger that cannot fail.
package logging
