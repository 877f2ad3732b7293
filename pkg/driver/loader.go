package driver

import (
	"fmt"
	"os"
	"strings"
)

// ModuleName joins a module chain into its canonical slash-separated name.
func ModuleName(chain []string) string {
	return strings.Join(chain, "/")
}

// SplitModuleName turns "a.b.c" or "a/b/c" into a module chain.
func SplitModuleName(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return strings.FieldsFunc(name, func(r rune) bool { return r == '.' || r == '/' })
}

// LoadAndCompile resolves the module named by chain and compiles each of its
// sources. found is false, with a nil error, when no source exists. Errors
// from the compiler are returned as is; no executables are returned when any
// step fails.
func (s *Session) LoadAndCompile(chain []string) ([]*Executable, bool, error) {
	name := ModuleName(chain)
	if name == "" {
		return nil, false, nil
	}

	if IsCoreModule(name) {
		source, ok, err := s.coreSource(name)
		if err != nil || !ok {
			return nil, false, err
		}
		exe := &Executable{Module: name, File: name + SourceExtension, Source: source}
		if err := s.compiler.Compile(exe); err != nil {
			return nil, true, err
		}
		return []*Executable{exe}, true, nil
	}

	files, err := s.searchRoots(name)
	if err != nil {
		return nil, false, err
	}
	if len(files) == 0 {
		s.logger.Debug("module not found", s.logger.Args("module", name))
		return nil, false, nil
	}

	executables := make([]*Executable, 0, len(files))
	for _, path := range files {
		exe, err := readExecutable(name, path)
		if err != nil {
			return nil, true, err
		}
		if err := s.compiler.Compile(exe); err != nil {
			return nil, true, err
		}
		executables = append(executables, exe)
	}
	return executables, true, nil
}

func readExecutable(module, path string) (*Executable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	exe, err := newExecutable(file, module, path)
	_ = file.Close()
	return exe, err
}
