package workspace_test

import (
	"errors"
	"path/filepath"
	"testing"

	"logonorm/internal/workspace"
)

func TestPaths(t *testing.T) {
	ws := workspace.New("/state")
	if got := ws.UndoLogPath(); got != filepath.Join("/state", "undo_log.json") {
		t.Fatalf("unexpected undo path %q", got)
	}
	if got := ws.ReviewReportPath(); got != filepath.Join("/state", "low_confidence_report.json") {
		t.Fatalf("unexpected report path %q", got)
	}
}

func TestLockIsExclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	unlock, err := workspace.New(dir).Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	if _, err := workspace.New(dir).Lock(); !errors.Is(err, workspace.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	again, err := workspace.New(dir).Lock()
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	_ = again()
}
