package resolve

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"logonorm/internal/catalog"
	"logonorm/internal/config"
	"logonorm/internal/logging"
	"logonorm/internal/naming"
	"logonorm/internal/overrides"
	"logonorm/internal/rename"
	"logonorm/internal/review"
	"logonorm/internal/services"
)

// ReasonManual tags operations taken from the custom map.
const ReasonManual = "manual"

// CatalogSource supplies the official entities of a sport.
type CatalogSource interface {
	FetchTeams(ctx context.Context, sportID string) ([]catalog.Team, error)
	FetchLeagues(ctx context.Context, sportID string) ([]catalog.League, error)
}

// Matcher resolves files the index could not.
type Matcher interface {
	Match(ctx context.Context, sport, root string, files []string, entities []catalog.Descriptor) []BatchOutcome
}

// CategoryStatus describes how a sport category was handled.
type CategoryStatus string

const (
	StatusResolved     CategoryStatus = "resolved"
	StatusMissingDir   CategoryStatus = "missing_dir"
	StatusEmptyCatalog CategoryStatus = "empty_catalog"
	StatusFailed       CategoryStatus = "failed"
	StatusCancelled    CategoryStatus = "cancelled"
)

// Failure is a recovered error with its classification.
type Failure struct {
	Kind services.FailureKind
	Err  error
}

// CategoryReport counts what happened to one sport category.
type CategoryReport struct {
	Sport      string
	Status     CategoryStatus
	Files      int
	Ignored    int
	Manual     int
	Exact      int
	Settled    int
	AIAccepted int
	Queued     int
	Failures   []Failure
}

func (r *CategoryReport) fail(err error) {
	if err != nil {
		r.Failures = append(r.Failures, Failure{Kind: services.KindOf(err), Err: err})
	}
}

func (r CategoryReport) fatal() error {
	for _, f := range r.Failures {
		if services.Fatal(f.Err) {
			return f.Err
		}
	}
	return nil
}

// Resolution is everything a run decided, in category then discovery order.
type Resolution struct {
	Operations []rename.Operation
	Review     []review.Item
	Categories []CategoryReport
}

// FailureCount totals recovered failures across categories.
func (r Resolution) FailureCount() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Failures)
	}
	return n
}

// Pipeline resolves every configured sport category.
type Pipeline struct {
	cfg     config.RunConfig
	catalog CatalogSource
	matcher Matcher
	logger  *slog.Logger
}

// NewPipeline constructs a pipeline. A nil matcher queues every file the
// index cannot resolve for review.
func NewPipeline(cfg config.RunConfig, source CatalogSource, matcher Matcher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		catalog: source,
		matcher: matcher,
		logger:  logging.NewComponentLogger(logger, "resolve"),
	}
}

// Resolve walks the sport categories in configured order. set is the
// override snapshot loaded at the start of the run.
func (p *Pipeline) Resolve(ctx context.Context, set *overrides.Set) Resolution {
	if set == nil {
		set = overrides.NewSet()
	}
	pinned := set.PinnedTargets()
	var res Resolution
	for _, sport := range p.cfg.Sports {
		sctx := services.WithSport(ctx, sport.Dir)
		report := p.resolveSport(sctx, sport, set, pinned, &res)
		res.Categories = append(res.Categories, report)
		if err := report.fatal(); err != nil {
			logging.ErrorWithContext(logging.WithContext(sctx, p.logger), "stopping resolution", "resolve_aborted",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the configuration and rerun"),
				logging.String(logging.FieldImpact, "remaining sport categories were not processed"),
			)
			break
		}
	}
	return res
}

func (p *Pipeline) resolveSport(ctx context.Context, sport config.Sport, set *overrides.Set, pinned map[string]struct{}, res *Resolution) CategoryReport {
	logger := logging.WithContext(ctx, p.logger)
	report := CategoryReport{Sport: sport.Dir}
	if err := ctx.Err(); err != nil {
		report.Status = StatusCancelled
		return report
	}

	root := filepath.Join(p.cfg.LogosDir, sport.Dir)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		report.Status = StatusMissingDir
		logger.Info("sport directory not found, skipping", logging.String("path", root))
		return report
	}

	teams, err := p.catalog.FetchTeams(ctx, sport.SportID)
	report.fail(err)
	leagues, err := p.catalog.FetchLeagues(ctx, sport.SportID)
	report.fail(err)
	for _, f := range report.Failures {
		logging.WarnWithContext(logger, "catalog fetch incomplete", "catalog_fetch_failed",
			logging.String("sport_id", sport.SportID),
			logging.String("failure_kind", string(f.Kind)),
			logging.Error(f.Err),
			logging.String(logging.FieldErrorHint, "check the catalog API key and network"),
			logging.String(logging.FieldImpact, "matching uses whatever pages were fetched"),
		)
	}
	if len(teams)+len(leagues) == 0 {
		if len(report.Failures) > 0 {
			report.Status = StatusFailed
		} else {
			report.Status = StatusEmptyCatalog
			logger.Info("catalog has no entities, skipping", logging.String("sport_id", sport.SportID))
		}
		return report
	}

	idx := catalog.BuildIndex(teams, leagues)
	if idx.Len() == 0 {
		report.fail(services.Wrap(services.ErrDataGap, "resolve", "index", sport.SportID, errors.New("no entity carries a usable name")))
		report.Status = StatusEmptyCatalog
		logging.WarnWithContext(logger, "catalog entities have no names, skipping", "catalog_data_gap",
			logging.String("sport_id", sport.SportID),
			logging.String(logging.FieldImpact, "files in this category were not processed"),
		)
		return report
	}
	logger.Info("catalog index built",
		logging.Int("teams", len(teams)),
		logging.Int("leagues", len(leagues)),
		logging.Int("keys", idx.Len()),
	)

	files, err := Discover(root)
	if err != nil {
		report.fail(err)
		logging.WarnWithContext(logger, "some directories could not be read", "discover_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check directory permissions"),
			logging.String(logging.FieldImpact, "unreadable directories are not processed"),
		)
	}
	report.Files = len(files)

	var candidates []string
	for _, file := range files {
		if set.IsIgnored(file) {
			report.Ignored++
			continue
		}
		if name, ok := set.CustomName(file); ok {
			res.Operations = append(res.Operations, rename.Operation{
				Source: file,
				Sport:  sport.Dir,
				Stem:   overrides.ManualStem(name),
				Reason: ReasonManual,
			})
			report.Manual++
			continue
		}
		if _, ok := pinned[file]; ok {
			report.Settled++
			continue
		}
		candidates = append(candidates, file)
	}

	exact := MatchExact(idx, sport.Dir, candidates)
	res.Operations = append(res.Operations, exact.Operations...)
	report.Exact = len(exact.Operations)
	report.Settled += len(exact.Settled)

	if len(exact.Unmatched) > 0 {
		p.resolveUnmatched(ctx, sport, root, idx, teams, leagues, exact.Unmatched, &report, res)
	}
	report.Status = StatusResolved
	if errors.Is(ctx.Err(), context.Canceled) {
		report.Status = StatusCancelled
	}
	logger.Info("sport resolved",
		logging.Int("files", report.Files),
		logging.Int("manual", report.Manual),
		logging.Int("exact", report.Exact),
		logging.Int("ai_accepted", report.AIAccepted),
		logging.Int("queued", report.Queued),
		logging.Int("settled", report.Settled),
		logging.Int("ignored", report.Ignored),
	)
	return report
}

func (p *Pipeline) resolveUnmatched(ctx context.Context, sport config.Sport, root string, idx *catalog.Index, teams []catalog.Team, leagues []catalog.League, files []string, report *CategoryReport, res *Resolution) {
	if p.matcher == nil {
		for _, file := range files {
			res.Review = append(res.Review, review.Item{Sport: sport.Dir, File: file, Reason: "ai matching disabled"})
			report.Queued++
		}
		return
	}

	logger := logging.WithContext(ctx, p.logger)
	descriptors := catalog.Describe(teams, leagues, p.cfg.MaxEntities)
	for _, outcome := range p.matcher.Match(ctx, sport.Dir, root, files, descriptors) {
		report.fail(outcome.Err)
		for _, file := range outcome.Files {
			s, ok := outcome.Matches[file]
			if !ok {
				reason := "no ai result"
				if outcome.Err != nil {
					reason = "ai batch failed: " + string(services.KindOf(outcome.Err))
				}
				res.Review = append(res.Review, review.Item{Sport: sport.Dir, File: file, Reason: reason})
				report.Queued++
				continue
			}
			accepted := s.Name != "" && s.Confidence >= p.cfg.ConfidenceThreshold
			result := "queued"
			if accepted {
				result = "accepted"
			}
			logger.Debug("ai suggestion gated", logging.Args(append(
				logging.DecisionAttrs("ai_gate", result, s.Reasoning),
				logging.String(logging.FieldFile, file),
				logging.String("suggested", s.Name),
				logging.Float64("confidence", s.Confidence),
			)...)...)
			if !accepted {
				item := review.Item{Sport: sport.Dir, File: file, Confidence: s.Confidence, Reason: s.Reasoning}
				if s.Name != "" {
					name := s.Name
					item.Suggested = &name
				}
				res.Review = append(res.Review, item)
				report.Queued++
				continue
			}
			name := canonicalize(idx, s.Name)
			if naming.Sanitize(name) == naming.Stem(file) {
				report.Settled++
				continue
			}
			res.Operations = append(res.Operations, rename.Operation{
				Source: file,
				Sport:  sport.Dir,
				Stem:   name,
				Reason: "ai:" + formatConfidence(s.Confidence) + ":" + s.Reasoning,
			})
			report.AIAccepted++
		}
	}
}

// canonicalize maps a model-supplied name onto the catalog's canonical
// spelling when the index knows it.
func canonicalize(idx *catalog.Index, name string) string {
	if canonical, ok := idx.Lookup(naming.Normalize(name)); ok {
		return canonical
	}
	return name
}
