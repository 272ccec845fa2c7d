// Package overrides persists the user's manual decisions: explicit renames
// (custom mappings, file path to new file name) and the permanent ignore list.
package overrides

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"logonorm/internal/fileutil"
	"logonorm/internal/logging"
	"logonorm/internal/naming"
	"logonorm/internal/services"
)

// corruptSuffix is appended to an override file that failed to decode, so a
// later save does not destroy it.
const corruptSuffix = ".corrupt"

// Set is an in-memory snapshot of the custom map and ignore list.
type Set struct {
	custom map[string]string
	ignore map[string]struct{}
}

// NewSet returns an empty snapshot.
func NewSet() *Set {
	return &Set{custom: map[string]string{}, ignore: map[string]struct{}{}}
}

// CustomName returns the explicit new file name for path.
func (s *Set) CustomName(path string) (string, bool) {
	name, ok := s.custom[path]
	return name, ok
}

// IsIgnored reports whether path is permanently excluded.
func (s *Set) IsIgnored(path string) bool {
	_, ok := s.ignore[path]
	return ok
}

// Handled reports whether path already carries a manual decision.
func (s *Set) Handled(path string) bool {
	_, custom := s.custom[path]
	return custom || s.IsIgnored(path)
}

// SetCustom records an explicit rename. Quote characters are dropped.
func (s *Set) SetCustom(path, name string) {
	name = strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(name))
	if name == "" {
		return
	}
	s.custom[path] = name
}

// Ignore adds path to the ignore list.
func (s *Set) Ignore(path string) {
	s.ignore[path] = struct{}{}
}

// CustomCount and IgnoreCount report sizes.
func (s *Set) CustomCount() int { return len(s.custom) }

func (s *Set) IgnoreCount() int { return len(s.ignore) }

// ManualStem returns the base name a custom mapping asks for. An image
// extension typed with the name is dropped; the source keeps its own.
func ManualStem(name string) string {
	return naming.Sanitize(naming.StripImageExt(strings.TrimSpace(name)))
}

// ManualTarget returns the path a custom mapping renames source to, before
// collision handling.
func ManualTarget(source, name string) string {
	return filepath.Join(filepath.Dir(source), ManualStem(name)+naming.Ext(source))
}

// PinnedTargets lists the destinations of every custom mapping. A file found
// at one of these paths was placed there by hand and is left alone.
func (s *Set) PinnedTargets() map[string]struct{} {
	out := make(map[string]struct{}, len(s.custom))
	for src, name := range s.custom {
		out[ManualTarget(src, name)] = struct{}{}
	}
	return out
}

// Store reads and writes the two JSON files.
type Store struct {
	customPath string
	ignorePath string
	logger     *slog.Logger
}

// NewStore constructs a store backed by the provided files.
func NewStore(customPath, ignorePath string, logger *slog.Logger) *Store {
	return &Store{
		customPath: customPath,
		ignorePath: ignorePath,
		logger:     logging.NewComponentLogger(logger, "overrides"),
	}
}

// Load reads both files. A missing file is empty; an unreadable one is
// treated as empty and reported with a warning. A file that fails to decode
// is first moved aside to "<name>.corrupt".
func (s *Store) Load() *Set {
	set := NewSet()

	custom := map[string]string{}
	if err := fileutil.ReadJSON(s.customPath, &custom); err != nil {
		s.warn(s.customPath, err)
		custom = map[string]string{}
	}
	for path, name := range custom {
		set.SetCustom(path, name)
	}

	var ignore []string
	if err := fileutil.ReadJSON(s.ignorePath, &ignore); err != nil {
		s.warn(s.ignorePath, err)
	}
	for _, path := range ignore {
		if path = strings.TrimSpace(path); path != "" {
			set.Ignore(path)
		}
	}
	return set
}

// Save writes both files atomically.
func (s *Store) Save(set *Set) error {
	if err := fileutil.WriteJSONAtomic(s.customPath, set.custom); err != nil {
		return services.Wrap(services.ErrFilesystem, "overrides", "save custom map", "", err)
	}
	ignore := make([]string, 0, len(set.ignore))
	for path := range set.ignore {
		ignore = append(ignore, path)
	}
	sort.Strings(ignore)
	if err := fileutil.WriteJSONAtomic(s.ignorePath, ignore); err != nil {
		return services.Wrap(services.ErrFilesystem, "overrides", "save ignore list", "", err)
	}
	return nil
}

func (s *Store) warn(path string, err error) {
	if errors.Is(err, fileutil.ErrNotExist) {
		return
	}
	impact := "manual decisions in this file are not applied"
	if errors.Is(err, fileutil.ErrCorrupt) {
		backup := path + corruptSuffix
		if renameErr := os.Rename(path, backup); renameErr == nil {
			impact = "file moved to " + backup + "; it is rewritten on the next save"
		}
	}
	logging.WarnWithContext(s.logger, "override file unreadable; treating as empty", "overrides_load_failed",
		logging.String(logging.FieldFile, path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "fix or delete the file"),
		logging.String(logging.FieldImpact, impact),
	)
}
