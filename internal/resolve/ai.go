package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"logonorm/internal/catalog"
	"logonorm/internal/logging"
	"logonorm/internal/services"
	"logonorm/internal/services/llm"
)

const (
	defaultBatchSize = 20
	systemPrompt     = "You are a sports image expert that matches logo file names to official team and league names. Respond with JSON only."
)

// Completer issues a JSON-only completion request.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Suggestion is the AI matcher's answer for one file.
type Suggestion struct {
	File       string
	Name       string
	Confidence float64
	Reasoning  string
}

// BatchOutcome is the result of one AI request. Files lists every file sent;
// files absent from Matches got no usable answer. Err is set when the whole
// batch failed.
type BatchOutcome struct {
	Files   []string
	Matches map[string]Suggestion
	Err     error
}

// AIMatcher asks a language model to pair file names with catalog entities.
type AIMatcher struct {
	completer Completer
	batchSize int
	logger    *slog.Logger
}

// NewAIMatcher constructs a matcher. A batch size of zero uses 20.
func NewAIMatcher(completer Completer, batchSize int, logger *slog.Logger) *AIMatcher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &AIMatcher{
		completer: completer,
		batchSize: batchSize,
		logger:    logging.NewComponentLogger(logger, "ai-matcher"),
	}
}

// Match sends files in batches, in order. Files are identified to the model
// by their path relative to root so names stay unique across subdirectories.
func (m *AIMatcher) Match(ctx context.Context, sport, root string, files []string, entities []catalog.Descriptor) []BatchOutcome {
	var outcomes []BatchOutcome
	for start := 0; start < len(files); start += m.batchSize {
		end := min(start+m.batchSize, len(files))
		batch := files[start:end]
		outcome := BatchOutcome{Files: batch}
		if err := ctx.Err(); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Matches, outcome.Err = m.matchBatch(ctx, sport, root, batch, entities)
		if outcome.Err != nil {
			logging.WarnWithContext(m.logger, "ai batch failed", "ai_batch_failed",
				logging.String(logging.FieldSport, sport),
				logging.Int("batch", start/m.batchSize+1),
				logging.Int("files", len(batch)),
				logging.String("failure_kind", string(services.KindOf(outcome.Err))),
				logging.Error(outcome.Err),
				logging.Alert("ai_unavailable"),
				logging.String(logging.FieldErrorHint, "check the matching service key and model"),
				logging.String(logging.FieldImpact, "files in this batch are queued for review"),
			)
		} else {
			m.logger.Debug("ai batch matched",
				logging.String(logging.FieldSport, sport),
				logging.Int("batch", start/m.batchSize+1),
				logging.Int("files", len(batch)),
				logging.Int("matches", len(outcome.Matches)),
			)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (m *AIMatcher) matchBatch(ctx context.Context, sport, root string, batch []string, entities []catalog.Descriptor) (map[string]Suggestion, error) {
	byName := make(map[string]string, len(batch))
	names := make([]string, 0, len(batch))
	for _, file := range batch {
		name := relativeName(root, file)
		byName[name] = file
		names = append(names, name)
	}

	prompt, err := buildPrompt(sport, names, entities)
	if err != nil {
		return nil, err
	}
	content, err := m.completer.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		if services.KindOf(err) == services.KindUnknown {
			err = services.Wrap(services.ErrTransport, "ai-matcher", "complete", sport, err)
		}
		return nil, err
	}

	var payload aiResponse
	if err := llm.DecodeLLMJSON(content, &payload); err != nil {
		return nil, services.Wrap(services.ErrMalformed, "ai-matcher", "decode", sport, err)
	}

	matches := make(map[string]Suggestion, len(payload.Matches))
	for _, r := range payload.Matches {
		file, ok := byName[strings.TrimSpace(r.Filename)]
		if !ok {
			continue
		}
		if _, seen := matches[file]; seen {
			continue
		}
		matches[file] = Suggestion{
			File:       file,
			Name:       strings.TrimSpace(r.OfficialName),
			Confidence: clamp(float64(r.Confidence)),
			Reasoning:  strings.TrimSpace(r.Reasoning),
		}
	}
	return matches, nil
}

func relativeName(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}

func buildPrompt(sport string, names []string, entities []catalog.Descriptor) (string, error) {
	entityJSON, err := json.Marshal(entities)
	if err != nil {
		return "", fmt.Errorf("encode entities: %w", err)
	}
	fileJSON, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode file names: %w", err)
	}
	var b strings.Builder
	b.WriteString("Match local logo file names to official TEAMS or LEAGUES.\n\n")
	fmt.Fprintf(&b, "SPORT: %s\n", sport)
	fmt.Fprintf(&b, "OFFICIAL ENTITIES: %s\n\n", entityJSON)
	fmt.Fprintf(&b, "LOCAL FILES: %s\n\n", fileJSON)
	b.WriteString(`RULES:
1. Match each local file name to one of the OFFICIAL ENTITIES.
2. A file can match a Team or a League (e.g. "NBA.gif" -> "National Basketball Association").
3. Give a confidence between 0.0 and 1.0.
4. If there is no good match, set official_name to null.
5. Use the file names exactly as listed.

RESPONSE FORMAT (JSON only):
{"matches":[{"filename":"file1.gif","official_name":"Official Name","confidence":0.95,"reasoning":"Exact match to league short name"}]}`)
	return b.String(), nil
}

type aiResponse struct {
	Matches []aiMatch `json:"matches"`
}

type aiMatch struct {
	Filename     string         `json:"filename"`
	OfficialName string         `json:"official_name"`
	Confidence   flexibleNumber `json:"confidence"`
	Reasoning    string         `json:"reasoning"`
}

// flexibleNumber accepts a number, a numeric string, or null.
type flexibleNumber float64

func (f *flexibleNumber) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexibleNumber(v)
	return nil
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// formatConfidence renders a confidence for the operation reason.
func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
