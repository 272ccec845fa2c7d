package preflight

import (
	"context"

	"logonorm/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Logos directory", cfg.Paths.LogosDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	sportID := ""
	if len(cfg.Sports) > 0 {
		sportID = cfg.Sports[0].SportID
	}
	results = append(results, CheckCatalog(ctx, cfg.Catalog, sportID))
	results = append(results, CheckLLM(ctx, "Matching LLM", cfg.LLM))
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
