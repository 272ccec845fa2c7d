package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run identifier is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusCancelled RunStatus = "cancelled"
	// StatusReverted marks a run whose renames have all been undone.
	StatusReverted RunStatus = "reverted"
)

// Run is one journaled pipeline run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	Renamed    int
	Failed     int
	Queued     int
}

// Rename is one applied rename.
type Rename struct {
	Sport   string
	OldPath string
	NewPath string
	Reason  string
}

// Totals are the counters written when a run finishes.
type Totals struct {
	Renamed int
	Failed  int
	Queued  int
}

// Store is the SQLite-backed run journal.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// BeginRun records a new running run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	err := s.exec(ctx,
		"INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)",
		id, s.timestamp(), StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordRenames journals the renames applied by a run in one transaction.
func (s *Store) RecordRenames(ctx context.Context, runID string, renames []Rename) error {
	if len(renames) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO renames (run_id, sport, old_path, new_path, reason, applied_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare rename insert: %w", err)
	}
	defer stmt.Close()

	ts := s.timestamp()
	for _, r := range renames {
		if _, err := stmt.ExecContext(ctx, runID, r.Sport, r.OldPath, r.NewPath, r.Reason, ts); err != nil {
			return fmt.Errorf("insert rename %s: %w", r.NewPath, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit renames: %w", err)
	}
	return nil
}

// FinishRun stores the final status and totals.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, totals Totals) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ?, renamed = ?, failed = ?, queued = ? WHERE id = ?",
		s.timestamp(), status, totals.Renamed, totals.Failed, totals.Queued, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero lists all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT id, started_at, finished_at, status, renamed, failed, queued FROM runs ORDER BY started_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by identifier. A unique prefix of at least eight
// characters is accepted.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	query := "SELECT id, started_at, finished_at, status, renamed, failed, queued FROM runs WHERE id = ?"
	args := []any{id}
	if len(id) >= 8 && len(id) < 36 {
		query = "SELECT id, started_at, finished_at, status, renamed, failed, queued FROM runs WHERE id LIKE ? ORDER BY started_at DESC LIMIT 2"
		args = []any{id + "%"}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// LatestRun returns the most recent run that applied at least one rename.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, status, renamed, failed, queued FROM runs
         WHERE EXISTS (SELECT 1 FROM renames WHERE renames.run_id = runs.id)
         ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// UndoMap returns new path to old path for the renames of runID that have
// not been reverted yet.
func (s *Store) UndoMap(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT new_path, old_path FROM renames WHERE run_id = ? AND reverted_at IS NULL ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query renames: %w", err)
	}
	defer rows.Close()

	undo := map[string]string{}
	for rows.Next() {
		var newPath, oldPath string
		if err := rows.Scan(&newPath, &oldPath); err != nil {
			return nil, fmt.Errorf("scan rename: %w", err)
		}
		undo[newPath] = oldPath
	}
	return undo, rows.Err()
}

// MarkReverted stamps the given renames of runID as reverted. When no
// pending renames remain the run itself is marked reverted.
func (s *Store) MarkReverted(ctx context.Context, runID string, newPaths []string) error {
	if len(newPaths) == 0 {
		return nil
	}
	ts := s.timestamp()
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin revert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, p := range newPaths {
			if _, err := tx.ExecContext(ctx,
				"UPDATE renames SET reverted_at = ? WHERE run_id = ? AND new_path = ? AND reverted_at IS NULL",
				ts, runID, p,
			); err != nil {
				return fmt.Errorf("mark reverted %s: %w", p, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ? WHERE id = ?
             AND NOT EXISTS (SELECT 1 FROM renames WHERE run_id = ? AND reverted_at IS NULL)`,
			StatusReverted, runID, runID,
		); err != nil {
			return fmt.Errorf("mark run reverted: %w", err)
		}
		return tx.Commit()
	})
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run             Run
		started, status string
		finished        sql.NullString
	)
	if err := scanner.Scan(&run.ID, &started, &finished, &status, &run.Renamed, &run.Failed, &run.Queued); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = t
	if finished.Valid && finished.String != "" {
		ft, err := time.Parse(time.RFC3339Nano, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &ft
	}
	return run, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
