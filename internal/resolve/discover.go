package resolve

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"logonorm/internal/services"
)

// Discover lists candidate files under root in lexical walk order. Hidden
// files and directories and .ini files are skipped. Unreadable
// subdirectories are skipped and reported in the returned error alongside
// the files that could be listed.
func Discover(root string) ([]string, error) {
	var files []string
	var errs []error
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			errs = append(errs, err)
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.EqualFold(filepath.Ext(name), ".ini") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	if len(errs) > 0 {
		return files, services.Wrap(services.ErrFilesystem, "resolve", "discover", root, errors.Join(errs...))
	}
	return files, nil
}
