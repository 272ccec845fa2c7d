package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	sportKey contextKey = "sport"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	return v, ok && v != ""
}

// WithSport annotates context with the sport category being processed.
func WithSport(ctx context.Context, sport string) context.Context {
	return context.WithValue(ctx, sportKey, sport)
}

// SportFromContext extracts the sport category if present.
func SportFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sportKey).(string)
	return v, ok && v != ""
}
