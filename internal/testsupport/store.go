package testsupport

import (
	"testing"

	"logonorm/internal/config"
	"logonorm/internal/history"
	"logonorm/internal/workspace"
)

// MustOpenHistory opens the run journal for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(workspace.New(cfg.Paths.StateDir).HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
