// Package fileutil holds the JSON state file helpers shared by the overrides,
// review, and undo stores.
package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by ReadJSON when the file is absent.
var ErrNotExist = fs.ErrNotExist

// ErrCorrupt is returned by ReadJSON when the file exists but does not decode.
var ErrCorrupt = errors.New("corrupt state file")

// ReadJSON decodes path into target. A missing file returns an error
// satisfying errors.Is(err, ErrNotExist); an undecodable one satisfies
// errors.Is(err, ErrCorrupt).
func ReadJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrCorrupt, filepath.Base(path), err)
	}
	return nil
}

// WriteJSONAtomic writes value as indented JSON through a temporary file in
// the same directory followed by a rename, so readers never observe a
// partially written file.
func WriteJSONAtomic(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than not-exist count as
// existing so callers never treat an unreadable path as free.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
