package workflow

import (
	"context"
	"errors"
	"io/fs"

	"logonorm/internal/history"
	"logonorm/internal/logging"
	"logonorm/internal/rename"
)

// ErrNothingToUndo is returned when there is no undo record to replay.
var ErrNothingToUndo = errors.New("nothing to undo")

// UndoOutcome describes an undo.
type UndoOutcome struct {
	// RunID is set when a journaled run was reverted.
	RunID  string
	Report rename.RevertReport
}

// Undo reverts renames. With an empty runID the latest undo_log.json is
// replayed, falling back to the pending renames of the most recent
// journaled run when the log is empty; otherwise the journaled renames of
// runID are. Reverted
// entries are removed from undo_log.json and marked in the journal.
func (r *Runner) Undo(ctx context.Context, runID string) (UndoOutcome, error) {
	unlock, err := r.workspace.Lock()
	if err != nil {
		return UndoOutcome{}, err
	}
	defer func() { _ = unlock() }()

	latest, err := r.undo.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return UndoOutcome{}, err
	}

	var (
		outcome UndoOutcome
		record  rename.UndoRecord
	)
	switch {
	case runID != "":
		if r.history == nil {
			return outcome, errors.New("run history is not available")
		}
		run, err := r.history.GetRun(ctx, runID)
		if err != nil {
			return outcome, err
		}
		outcome.RunID = run.ID
		if record, err = r.history.UndoMap(ctx, run.ID); err != nil {
			return outcome, err
		}
	default:
		record = latest
		if r.history != nil {
			if run, err := r.history.LatestRun(ctx); err == nil {
				outcome.RunID = run.ID
				if len(record) == 0 {
					if record, err = r.history.UndoMap(ctx, run.ID); err != nil {
						return outcome, err
					}
				}
			}
		}
	}
	if len(record) == 0 {
		return outcome, ErrNothingToUndo
	}

	outcome.Report = r.executor.Revert(ctx, record)

	var reverted []string
	for _, e := range outcome.Report.Entries {
		if e.Status != rename.StatusReverted {
			continue
		}
		reverted = append(reverted, e.NewPath)
		if latest[e.NewPath] == e.OldPath {
			delete(latest, e.NewPath)
		}
	}
	var errs []error
	if err := r.undo.Save(latest); err != nil {
		errs = append(errs, err)
	}
	if r.history != nil && outcome.RunID != "" {
		if err := r.history.MarkReverted(context.WithoutCancel(ctx), outcome.RunID, reverted); err != nil {
			errs = append(errs, err)
		}
	}
	r.logger.Info("undo finished",
		logging.String(logging.FieldRunID, outcome.RunID),
		logging.Int("reverted", outcome.Report.Count(rename.StatusReverted)),
		logging.Int("missing", outcome.Report.Count(rename.StatusMissing)),
		logging.Int("conflict", outcome.Report.Count(rename.StatusConflict)),
		logging.Int("failed", outcome.Report.Count(rename.StatusFailed)),
	)
	return outcome, errors.Join(errs...)
}

// Runs lists journaled runs, newest first.
func (r *Runner) Runs(ctx context.Context, limit int) ([]history.Run, error) {
	if r.history == nil {
		return nil, nil
	}
	return r.history.ListRuns(ctx, limit)
}
