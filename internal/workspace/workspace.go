// Package workspace resolves the state files logonorm keeps between runs
// and guards them with an exclusive lock.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"logonorm/internal/services"
)

// State file names under the state directory.
const (
	CustomMappingsFile = "custom_mappings.json"
	IgnoreListFile     = "ignore_list.json"
	ReviewReportFile   = "low_confidence_report.json"
	UndoLogFile        = "undo_log.json"
	HistoryFile        = "history.db"
	LockFile           = "logonorm.lock"
)

// ErrLocked is returned when another logonorm process holds the state lock.
var ErrLocked = errors.New("another logonorm process is running")

// Workspace is the set of state paths rooted at one directory.
type Workspace struct {
	dir string
}

// New returns the workspace rooted at stateDir.
func New(stateDir string) *Workspace {
	return &Workspace{dir: stateDir}
}

// Dir returns the state directory.
func (w *Workspace) Dir() string { return w.dir }

func (w *Workspace) CustomMappingsPath() string { return filepath.Join(w.dir, CustomMappingsFile) }

func (w *Workspace) IgnoreListPath() string { return filepath.Join(w.dir, IgnoreListFile) }

func (w *Workspace) ReviewReportPath() string { return filepath.Join(w.dir, ReviewReportFile) }

func (w *Workspace) UndoLogPath() string { return filepath.Join(w.dir, UndoLogFile) }

func (w *Workspace) HistoryPath() string { return filepath.Join(w.dir, HistoryFile) }

// Lock takes the non-blocking state lock. run, review, and undo all hold it
// while they read and write state files. The returned function releases it.
func (w *Workspace) Lock() (func() error, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workspace", "lock", "create state directory", err)
	}
	path := filepath.Join(w.dir, LockFile)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workspace", "lock", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return lock.Unlock, nil
}
