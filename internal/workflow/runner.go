package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"logonorm/internal/history"
	"logonorm/internal/logging"
	"logonorm/internal/overrides"
	"logonorm/internal/rename"
	"logonorm/internal/resolve"
	"logonorm/internal/review"
	"logonorm/internal/services"
	"logonorm/internal/workspace"
)

// Resolver produces the operations and review items for one run.
type Resolver interface {
	Resolve(ctx context.Context, set *overrides.Set) resolve.Resolution
}

// Runner coordinates a run and its persistence.
type Runner struct {
	workspace *workspace.Workspace
	resolver  Resolver
	executor  *rename.Executor
	history   *history.Store
	overrides *overrides.Store
	reports   *review.Store
	undo      *rename.UndoStore
	logger    *slog.Logger
}

// NewRunner wires a runner. history may be nil, in which case run ids are
// still generated but nothing is journaled.
func NewRunner(ws *workspace.Workspace, resolver Resolver, executor *rename.Executor, hist *history.Store, logger *slog.Logger) *Runner {
	logger = logging.NewComponentLogger(logger, "workflow")
	return &Runner{
		workspace: ws,
		resolver:  resolver,
		executor:  executor,
		history:   hist,
		overrides: overrides.NewStore(ws.CustomMappingsPath(), ws.IgnoreListPath(), logger),
		reports:   review.NewStore(ws.ReviewReportPath()),
		undo:      rename.NewUndoStore(ws.UndoLogPath()),
		logger:    logger,
	}
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Status     history.RunStatus
	Duration   time.Duration
	Resolution resolve.Resolution
	Plan       rename.Plan
	Result     rename.Result
}

// Renamed is the number of files renamed.
func (s Summary) Renamed() int { return len(s.Result.Applied) }

// Failed counts rename failures and recovered category failures.
func (s Summary) Failed() int { return len(s.Result.Failures) + s.Resolution.FailureCount() }

// Queued is the size of the review queue written by the run.
func (s Summary) Queued() int { return len(s.Resolution.Review) }

// Run executes one resolution run. The returned error is non-nil only when
// the run could not start or its state could not be persisted; the Summary
// is populated in either case as far as the run got.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	unlock, err := r.workspace.Lock()
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = unlock() }()

	summary := Summary{RunID: uuid.NewString(), Status: history.StatusCompleted}
	if r.history != nil {
		id, err := r.history.BeginRun(ctx)
		if err != nil {
			return summary, services.Wrap(services.ErrFilesystem, "workflow", "begin run", "", err)
		}
		summary.RunID = id
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started", logging.String(logging.FieldEventType, "run_started"))

	set := r.overrides.Load()
	summary.Resolution = r.resolver.Resolve(ctx, set)
	summary.Plan, summary.Result = r.executor.Execute(ctx, summary.Resolution.Operations)
	if ctx.Err() != nil {
		summary.Status = history.StatusCancelled
	}

	var errs []error
	if err := r.undo.Save(summary.Result.Undo); err != nil {
		errs = append(errs, err)
	}
	if err := r.reports.Save(summary.Resolution.Review); err != nil {
		errs = append(errs, err)
	}
	if err := r.journal(context.WithoutCancel(ctx), summary); err != nil {
		errs = append(errs, err)
	}
	summary.Duration = time.Since(started)

	for _, err := range errs {
		logging.ErrorWithContext(logger, "run state not saved", "state_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
		)
	}
	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.String("status", string(summary.Status)),
		logging.Int("renamed", summary.Renamed()),
		logging.Int("unchanged", len(summary.Plan.Unchanged)),
		logging.Int("failed", summary.Failed()),
		logging.Int("queued", summary.Queued()),
		logging.Duration("duration", summary.Duration),
	)
	return summary, errors.Join(errs...)
}

func (r *Runner) journal(ctx context.Context, summary Summary) error {
	if r.history == nil {
		return nil
	}
	renames := make([]history.Rename, 0, len(summary.Result.Applied))
	for _, step := range summary.Result.Applied {
		renames = append(renames, history.Rename{
			Sport:   step.Sport,
			OldPath: step.Source,
			NewPath: step.Target,
			Reason:  step.Reason,
		})
	}
	if err := r.history.RecordRenames(ctx, summary.RunID, renames); err != nil {
		return services.Wrap(services.ErrFilesystem, "workflow", "journal renames", "", err)
	}
	totals := history.Totals{Renamed: summary.Renamed(), Failed: summary.Failed(), Queued: summary.Queued()}
	if err := r.history.FinishRun(ctx, summary.RunID, summary.Status, totals); err != nil {
		return services.Wrap(services.ErrFilesystem, "workflow", "finish run", "", err)
	}
	return nil
}
