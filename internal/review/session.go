package review

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"logonorm/internal/logging"
	"logonorm/internal/overrides"
)

// Prompter collects user input for one item at a time. Implementations
// return ctx.Err() when ctx is cancelled and io.EOF when input ends.
type Prompter interface {
	Choose(ctx context.Context, item Item, position, total int) (string, error)
	AskName(ctx context.Context, item Item) (string, error)
}

// Tally summarizes a session.
type Tally struct {
	Ignored     int
	Overridden  int
	Deferred    int
	Remaining   int
	Quit        bool
	Interrupted bool
}

// Session applies triage decisions to the override store.
type Session struct {
	overrides *overrides.Store
	logger    *slog.Logger
}

// NewSession returns a session writing through store.
func NewSession(store *overrides.Store, logger *slog.Logger) *Session {
	return &Session{overrides: store, logger: logging.NewComponentLogger(logger, "review")}
}

// Unhandled filters out items that already carry a manual decision.
func Unhandled(items []Item, set *overrides.Set) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if set.Handled(item.File) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Run walks the pending items through p. Decisions are saved before Run
// returns, whether the queue was exhausted, the user quit, input ended, or
// ctx was cancelled.
func (s *Session) Run(ctx context.Context, items []Item, p Prompter) (Tally, error) {
	set := s.overrides.Load()
	pending := Unhandled(items, set)
	tally := Tally{Remaining: len(pending)}

	promptErr := s.walk(ctx, pending, set, p, &tally)

	if err := s.overrides.Save(set); err != nil {
		return tally, err
	}
	s.logger.Info("review session saved",
		logging.Int("ignored", tally.Ignored),
		logging.Int("overridden", tally.Overridden),
		logging.Int("deferred", tally.Deferred),
		logging.Int("remaining", tally.Remaining),
		logging.Bool("interrupted", tally.Interrupted),
	)
	return tally, promptErr
}

func (s *Session) walk(ctx context.Context, pending []Item, set *overrides.Set, p Prompter, tally *Tally) error {
	for i, item := range pending {
		if ctx.Err() != nil {
			tally.Interrupted = true
			return nil
		}
		in, err := s.read(ctx, item, i+1, len(pending), p)
		if err != nil {
			switch {
			case ctx.Err() != nil || errors.Is(err, context.Canceled):
				tally.Interrupted = true
				return nil
			case errors.Is(err, io.EOF):
				tally.Quit = true
				return nil
			default:
				return err
			}
		}

		d := Decide(item, in)
		if d.Quit {
			tally.Quit = true
			return nil
		}
		switch d.State {
		case Ignored:
			set.Ignore(item.File)
			tally.Ignored++
			tally.Remaining--
		case Overridden:
			set.SetCustom(item.File, d.Name)
			tally.Overridden++
			tally.Remaining--
		default:
			tally.Deferred++
		}
		s.logger.Debug("review decision",
			logging.String(logging.FieldDecisionType, d.State.String()),
			logging.String(logging.FieldSport, item.Sport),
			logging.String(logging.FieldFile, item.File),
			logging.String("name", d.Name),
		)
	}
	return nil
}

func (s *Session) read(ctx context.Context, item Item, position, total int, p Prompter) (Input, error) {
	token, err := p.Choose(ctx, item, position, total)
	if err != nil {
		return Input{}, err
	}
	in := Input{Token: token}
	if normalizeToken(token) == TokenManual {
		if in.Name, err = p.AskName(ctx, item); err != nil {
			return Input{}, err
		}
	}
	return in, nil
}
