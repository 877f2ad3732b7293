package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// locateSources finds the source files for name under root. A file
// root/name.loop is the only source when present; otherwise every .loop file
// directly inside the directory root/name is. Nil means root has nothing.
func locateSources(root, name string) ([]string, error) {
	base := filepath.Join(root, filepath.FromSlash(name))

	file := base + SourceExtension
	if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
		return []string{file}, nil
	}

	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return nil, nil
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", base, err)
	}
	var files []string
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), SourceExtension) {
			continue
		}
		path := filepath.Join(base, entry.Name())
		if !isSourceFile(entry, path) {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

func isSourceFile(entry fs.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// searchRoots walks roots in order and returns the sources of the first
// root that has any.
func (s *Session) searchRoots(name string) ([]string, error) {
	for _, root := range *s.roots.Load() {
		files, err := locateSources(root, name)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			s.logger.Debug("resolved module", s.logger.Args("module", name, "root", root, "files", len(files)))
			return files, nil
		}
		s.logger.Trace("module not under root", s.logger.Args("module", name, "root", root))
	}
	return nil, nil
}
