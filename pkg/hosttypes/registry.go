// Package hosttypes provides a binding table that answers constructor
// lookups for host types without reflecting on a live runtime.
package hosttypes

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

//go:embed bindings.yml
var defaultBindings []byte

// Registry maps fully qualified host type names to the arities of their
// public constructors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string][]int
}

type bindingFile struct {
	Types []binding `yaml:"types" toml:"types"`
}

type binding struct {
	Name         string `yaml:"name" toml:"name"`
	Constructors []int  `yaml:"constructors" toml:"constructors"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string][]int)}
}

// Default returns a registry seeded with the bundled bindings.
func Default() *Registry {
	reg := NewRegistry()
	if err := reg.loadYAML(defaultBindings); err != nil {
		panic(fmt.Sprintf("hosttypes: bundled bindings: %v", err))
	}
	return reg
}

// Register adds constructor arities for a type, merging with any already
// known. Registering with no arities records a type with no public
// constructors.
func (r *Registry) Register(fqn string, arities ...int) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	merged := append(append([]int{}, r.types[fqn]...), arities...)
	sort.Ints(merged)
	out := merged[:0]
	for i, arity := range merged {
		if arity < 0 || (i > 0 && arity == merged[i-1]) {
			continue
		}
		out = append(out, arity)
	}
	r.types[fqn] = out
}

// LookupType implements verifier.TypeResolver.
func (r *Registry) LookupType(fqn string) ([]int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	arities, ok := r.types[fqn]
	if !ok {
		return nil, false
	}
	return append([]int(nil), arities...), true
}

// Len reports the number of known types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// LoadFile merges a YAML (.yml/.yaml) or TOML (.toml) binding file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("hosttypes: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = r.loadTOML(data)
	case ".yml", ".yaml":
		err = r.loadYAML(data)
	default:
		return fmt.Errorf("hosttypes: unsupported binding file %s", path)
	}
	if err != nil {
		return fmt.Errorf("hosttypes: parse %s: %w", path, err)
	}
	return nil
}

func (r *Registry) loadYAML(data []byte) error {
	var file bindingFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return err
	}
	return r.apply(file)
}

func (r *Registry) loadTOML(data []byte) error {
	var file bindingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return err
	}
	return r.apply(file)
}

func (r *Registry) apply(file bindingFile) error {
	for _, b := range file.Types {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("binding without name")
		}
		r.Register(b.Name, b.Constructors...)
	}
	return nil
}
