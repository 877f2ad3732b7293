package driver

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unique"
)

//go:embed corelib
var corelib embed.FS

// CoreLibrary returns the bundled core modules rooted so that the module
// "loop/lang" lives at "loop/lang.loop".
func CoreLibrary() fs.FS {
	sub, err := fs.Sub(corelib, "corelib")
	if err != nil {
		panic(fmt.Sprintf("driver: core library: %v", err))
	}
	return sub
}

// IsCoreModule reports whether name is served from the core library rather
// than the search roots.
func IsCoreModule(name string) bool {
	return name == PreludeModule || strings.HasPrefix(name, CorePrefix)
}

// coreSource returns the cached source of a core module, reading it on the
// first request. Concurrent first requests share one read and the first
// stored value wins.
func (s *Session) coreSource(name string) (string, bool, error) {
	if cached, ok := s.cache.Load(name); ok {
		s.logger.Debug("core cache hit", s.logger.Args("module", name))
		return cached.(string), true, nil
	}
	value, err, _ := s.inflight.Do(name, func() (any, error) {
		if cached, ok := s.cache.Load(name); ok {
			return cached, nil
		}
		data, err := fs.ReadFile(s.core, name+SourceExtension)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("driver: read core module %s: %w", name, err)
		}
		source := unique.Make(string(data)).Value()
		actual, _ := s.cache.LoadOrStore(name, source)
		s.logger.Debug("core cache miss", s.logger.Args("module", name, "bytes", len(data)))
		return actual, nil
	})
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return value.(string), true, nil
}
