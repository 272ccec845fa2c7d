package rename

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"logonorm/internal/logging"
	"logonorm/internal/naming"
	"logonorm/internal/services"
)

// maxDisambiguator bounds the suffix search in a pathological directory.
const maxDisambiguator = 10000

// Operation is a resolved rename request.
type Operation struct {
	Source string
	Sport  string
	// Stem is the desired base name without extension; it is sanitized
	// during planning and the source extension is kept.
	Stem   string
	Reason string
}

// Step is a planned rename with a collision-free target.
type Step struct {
	Operation
	Target string
}

// Plan is the ordered set of renames to apply.
type Plan struct {
	Steps []Step
	// Unchanged holds operations whose target is the source itself.
	Unchanged []Operation
	// Invalid holds operations whose sanitized stem is empty.
	Invalid []Operation
}

// Failure records a rename that could not be applied.
type Failure struct {
	Step Step
	Err  error
}

// Result summarizes an Apply call.
type Result struct {
	Applied  []Step
	Failures []Failure
	Undo     UndoRecord
}

// Executor plans and applies renames.
type Executor struct {
	logger *slog.Logger
	rename func(oldpath, newpath string) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithRenameFunc replaces os.Rename (tests inject failures through this).
func WithRenameFunc(fn func(oldpath, newpath string) error) Option {
	return func(e *Executor) {
		if fn != nil {
			e.rename = fn
		}
	}
}

// NewExecutor constructs an executor.
func NewExecutor(logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger: logging.NewComponentLogger(logger, "rename"),
		rename: os.Rename,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan resolves a target for every operation, in order. The first operation
// to want a name gets it unsuffixed; later ones get _1, _2, and so on.
func (e *Executor) Plan(ops []Operation) Plan {
	var plan Plan
	claimed := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		stem := naming.Sanitize(op.Stem)
		if stem == "" {
			plan.Invalid = append(plan.Invalid, op)
			continue
		}
		dir := filepath.Dir(op.Source)
		ext := filepath.Ext(op.Source)
		if filepath.Join(dir, stem+ext) == op.Source {
			plan.Unchanged = append(plan.Unchanged, op)
			continue
		}
		target, ok := freeTarget(dir, stem, ext, op.Source, claimed)
		if !ok {
			plan.Invalid = append(plan.Invalid, op)
			continue
		}
		if target == op.Source {
			// Already carries a disambiguated form of the desired name.
			plan.Unchanged = append(plan.Unchanged, op)
			continue
		}
		claimed[claimKey(target)] = struct{}{}
		plan.Steps = append(plan.Steps, Step{Operation: op, Target: target})
	}
	return plan
}

// Apply performs the planned renames in order and returns the undo record
// for the ones that succeeded.
func (e *Executor) Apply(ctx context.Context, plan Plan) Result {
	result := Result{Undo: UndoRecord{}}

	claimed := make(map[string]struct{}, len(plan.Steps))
	for _, step := range plan.Steps {
		claimed[claimKey(step.Target)] = struct{}{}
	}

	for _, op := range plan.Invalid {
		logging.WarnWithContext(e.logger, "rename skipped: empty target name", "rename_invalid",
			logging.String(logging.FieldFile, op.Source),
			logging.String("reason", op.Reason),
			logging.String(logging.FieldImpact, "file keeps its current name"),
		)
	}

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, Failure{Step: step, Err: err})
			continue
		}
		applied, err := e.applyStep(step, claimed)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Step: step, Err: err})
			logging.ErrorWithContext(e.logger, "rename failed", "rename_failed",
				logging.String(logging.FieldSport, step.Sport),
				logging.String(logging.FieldFile, step.Source),
				logging.String("target", step.Target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the logo directory"),
			)
			continue
		}
		if applied.Target == applied.Source {
			continue
		}
		result.Applied = append(result.Applied, applied)
		result.Undo[applied.Target] = applied.Source
		e.logger.Info("renamed",
			logging.String(logging.FieldSport, applied.Sport),
			logging.String("from", filepath.Base(applied.Source)),
			logging.String("to", filepath.Base(applied.Target)),
			logging.String("reason", applied.Reason),
		)
	}
	return result
}

// Execute plans and applies ops in one call.
func (e *Executor) Execute(ctx context.Context, ops []Operation) (Plan, Result) {
	plan := e.Plan(ops)
	return plan, e.Apply(ctx, plan)
}

func (e *Executor) applyStep(step Step, claimed map[string]struct{}) (Step, error) {
	if _, err := os.Lstat(step.Source); err != nil {
		return step, services.Wrap(services.ErrFilesystem, "rename", "stat source", step.Source, err)
	}
	if occupied(step.Target, step.Source) {
		// Something outside this run created the target after planning.
		dir := filepath.Dir(step.Source)
		ext := filepath.Ext(step.Source)
		stem := naming.Sanitize(step.Stem)
		target, ok := freeTarget(dir, stem, ext, step.Source, claimed)
		if !ok {
			return step, services.Wrap(services.ErrFilesystem, "rename", "resolve collision", step.Target, nil)
		}
		claimed[claimKey(target)] = struct{}{}
		step.Target = target
		if target == step.Source {
			return step, nil
		}
	}
	if err := e.rename(step.Source, step.Target); err != nil {
		return step, services.Wrap(services.ErrFilesystem, "rename", "apply", step.Source, err)
	}
	return step, nil
}

// freeTarget returns the first of stem+ext, stem_1+ext, ... that is neither
// on disk nor claimed.
func freeTarget(dir, stem, ext, source string, claimed map[string]struct{}) (string, bool) {
	for n := 0; n <= maxDisambiguator; n++ {
		candidate := filepath.Join(dir, naming.WithDisambiguator(stem, n)+ext)
		if _, taken := claimed[claimKey(candidate)]; taken {
			continue
		}
		if occupied(candidate, source) {
			continue
		}
		return candidate, true
	}
	return "", false
}

// occupied reports whether target exists as a different file than source.
// On case-insensitive filesystems a case-only rename resolves target to the
// source itself, which is not a collision.
func occupied(target, source string) bool {
	if target == source {
		return false
	}
	tInfo, err := os.Lstat(target)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist)
	}
	sInfo, err := os.Lstat(source)
	if err != nil {
		return true
	}
	return !os.SameFile(tInfo, sInfo)
}

// claimKey folds case so two pending targets differing only in case never
// both claim a name on a case-insensitive filesystem.
func claimKey(path string) string {
	return strings.ToLower(path)
}
