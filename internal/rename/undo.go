package rename

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"logonorm/internal/fileutil"
	"logonorm/internal/logging"
	"logonorm/internal/services"
)

// UndoRecord maps each new path to the path it was renamed from.
type UndoRecord map[string]string

// RevertStatus is the per-entry outcome of a revert.
type RevertStatus string

const (
	StatusReverted RevertStatus = "reverted"
	// StatusMissing means the renamed file is no longer at its new path.
	StatusMissing RevertStatus = "missing"
	// StatusConflict means the original path is occupied; it is left untouched.
	StatusConflict RevertStatus = "conflict"
	StatusFailed   RevertStatus = "failed"
)

// RevertEntry is one line of a revert report.
type RevertEntry struct {
	NewPath string
	OldPath string
	Status  RevertStatus
	Err     error
}

// RevertReport lists outcomes in new-path order.
type RevertReport struct {
	Entries []RevertEntry
}

// Count returns the number of entries with status.
func (r RevertReport) Count(status RevertStatus) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Revert renames every new path back to its old path. Nothing here is
// fatal: missing files, occupied originals, and failed renames are reported
// per entry.
func (e *Executor) Revert(ctx context.Context, undo UndoRecord) RevertReport {
	keys := make([]string, 0, len(undo))
	for newPath := range undo {
		keys = append(keys, newPath)
	}
	sort.Strings(keys)

	var report RevertReport
	for _, newPath := range keys {
		oldPath := undo[newPath]
		entry := RevertEntry{NewPath: newPath, OldPath: oldPath}
		switch {
		case ctx.Err() != nil:
			entry.Status, entry.Err = StatusFailed, ctx.Err()
		case !exists(newPath):
			entry.Status = StatusMissing
		case occupied(oldPath, newPath):
			entry.Status = StatusConflict
		default:
			if err := e.rename(newPath, oldPath); err != nil {
				entry.Status = StatusFailed
				entry.Err = services.Wrap(services.ErrFilesystem, "rename", "revert", newPath, err)
			} else {
				entry.Status = StatusReverted
			}
		}
		e.logRevert(entry)
		report.Entries = append(report.Entries, entry)
	}
	return report
}

func (e *Executor) logRevert(entry RevertEntry) {
	attrs := []logging.Attr{
		logging.String("new_path", entry.NewPath),
		logging.String("old_path", entry.OldPath),
		logging.String("status", string(entry.Status)),
	}
	switch entry.Status {
	case StatusReverted:
		e.logger.Info("reverted", logging.Args(attrs...)...)
	case StatusMissing:
		logging.WarnWithContext(e.logger, "revert skipped: file missing", "revert_missing",
			append(attrs, logging.String(logging.FieldImpact, "nothing to restore for this entry"))...)
	case StatusConflict:
		logging.WarnWithContext(e.logger, "revert skipped: original path occupied", "revert_conflict",
			append(attrs,
				logging.String(logging.FieldErrorHint, "move the file at the original path aside and re-run undo"),
				logging.String(logging.FieldImpact, "file keeps its resolved name"))...)
	default:
		logging.ErrorWithContext(e.logger, "revert failed", "revert_failed", append(attrs, logging.Error(entry.Err))...)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// UndoStore persists the single-generation undo record.
type UndoStore struct {
	path string
}

// NewUndoStore returns a store writing to path.
func NewUndoStore(path string) *UndoStore {
	return &UndoStore{path: path}
}

// Path returns the backing file.
func (s *UndoStore) Path() string { return s.path }

// Save replaces any previous record.
func (s *UndoStore) Save(undo UndoRecord) error {
	if undo == nil {
		undo = UndoRecord{}
	}
	if err := fileutil.WriteJSONAtomic(s.path, undo); err != nil {
		return services.Wrap(services.ErrFilesystem, "rename", "save undo record", "", err)
	}
	return nil
}

// Load reads the record. A missing file returns an empty record and an
// error satisfying errors.Is(err, fs.ErrNotExist).
func (s *UndoStore) Load() (UndoRecord, error) {
	undo := UndoRecord{}
	if err := fileutil.ReadJSON(s.path, &undo); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return UndoRecord{}, err
		}
		return UndoRecord{}, services.Wrap(services.ErrFilesystem, "rename", "load undo record", "", err)
	}
	return undo, nil
}
