package driver

import (
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/pterm/pterm"
	"golang.org/x/sync/singleflight"

	"loop/frontend-go/pkg/logging"
)

const (
	// SourceExtension is appended to a module name to find its source file.
	SourceExtension = ".loop"
	// PreludeModule is the core module loaded implicitly by every program.
	PreludeModule = "prelude"
	// CorePrefix marks module names served from the core library.
	CorePrefix = "loop/"
	// DefaultSearchPath is the only search root of a fresh session.
	DefaultSearchPath = "."
)

// Compiler turns the source of an executable into a compiled unit. Errors
// are returned to LoadAndCompile callers unchanged.
type Compiler interface {
	Compile(exe *Executable) error
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(exe *Executable) error

func (f CompilerFunc) Compile(exe *Executable) error { return f(exe) }

type nopCompiler struct{}

func (nopCompiler) Compile(*Executable) error { return nil }

// Session owns the search roots and the core source cache used to resolve
// modules. Independent sessions share nothing.
type Session struct {
	roots    atomic.Pointer[[]string]
	core     fs.FS
	cache    sync.Map // module name -> interned source
	inflight singleflight.Group
	compiler Compiler
	logger   *pterm.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCompiler installs the compiler invoked for every resolved source.
func WithCompiler(compiler Compiler) SessionOption {
	return func(s *Session) {
		if compiler != nil {
			s.compiler = compiler
		}
	}
}

// WithCoreFS replaces the embedded core library, mostly for tests.
func WithCoreFS(core fs.FS) SessionOption {
	return func(s *Session) {
		if core != nil {
			s.core = core
		}
	}
}

// WithLogger sets the logger the loader reports cache and search activity to.
func WithLogger(logger *pterm.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSearchPaths sets the initial search roots.
func WithSearchPaths(paths ...string) SessionOption {
	return func(s *Session) { s.SetSearchPaths(paths...) }
}

// NewSession returns a session searching the current directory and the
// embedded core library.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		core:     CoreLibrary(),
		compiler: nopCompiler{},
		logger:   logging.Discard(),
	}
	s.ResetSearchPaths()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchPaths returns a copy of the current search roots.
func (s *Session) SearchPaths() []string {
	return append([]string(nil), (*s.roots.Load())...)
}

// SetSearchPaths replaces the search roots wholesale. Loads already in
// flight keep the list they started with.
func (s *Session) SetSearchPaths(paths ...string) {
	next := append([]string{}, paths...)
	s.roots.Store(&next)
}

// ResetSearchPaths restores the default search root.
func (s *Session) ResetSearchPaths() {
	s.SetSearchPaths(DefaultSearchPath)
}

// AppendSearchPaths adds roots after the existing ones.
func (s *Session) AppendSearchPaths(paths ...string) {
	for {
		current := s.roots.Load()
		next := append(append([]string{}, (*current)...), paths...)
		if s.roots.CompareAndSwap(current, &next) {
			return
		}
	}
}
