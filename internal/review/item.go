package review

import (
	"errors"
	"sort"

	"logonorm/internal/fileutil"
	"logonorm/internal/services"
)

// Item is one queued file. Suggested is nil when the AI matcher returned no
// name for the file.
type Item struct {
	Sport      string  `json:"sport"`
	File       string  `json:"file"`
	Suggested  *string `json:"suggested"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Suggestion returns the suggested name or "".
func (i Item) Suggestion() string {
	if i.Suggested == nil {
		return ""
	}
	return *i.Suggested
}

// Store reads and writes low_confidence_report.json.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the report location.
func (s *Store) Path() string { return s.path }

// Save replaces the report with items.
func (s *Store) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	if err := fileutil.WriteJSONAtomic(s.path, items); err != nil {
		return services.Wrap(services.ErrFilesystem, "review", "save report", "", err)
	}
	return nil
}

// Load reads the report. A missing report is an empty queue.
func (s *Store) Load() ([]Item, error) {
	var items []Item
	if err := fileutil.ReadJSON(s.path, &items); err != nil {
		if errors.Is(err, fileutil.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrFilesystem, "review", "load report", "", err)
	}
	return items, nil
}

// SportCount is one row of Summarize.
type SportCount struct {
	Sport string
	Count int
}

// Summarize counts queued items per sport, largest first, ties by name.
func Summarize(items []Item) []SportCount {
	counts := map[string]int{}
	for _, item := range items {
		counts[item.Sport]++
	}
	out := make([]SportCount, 0, len(counts))
	for sport, n := range counts {
		out = append(out, SportCount{Sport: sport, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sport < out[j].Sport
	})
	return out
}
