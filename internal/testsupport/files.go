package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and its parent directories, holding content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Tree creates one file per slash-separated relative path under root and
// returns the absolute paths in the same order. Each file holds its own
// relative path so tests can tell files apart after renames.
func Tree(t testing.TB, root string, rels ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(rels))
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		WriteFile(t, path, rel)
		paths = append(paths, path)
	}
	return paths
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
