package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigNames lists the session config file names FindConfig looks for, in
// order of preference.
var ConfigNames = []string{"loop.yml", "loop.yaml", "loop.toml"}

// PathEnv lists extra search roots, separated by os.PathListSeparator.
const PathEnv = "LOOP_PATH"

// Config models a loop.yml or loop.toml session file.
type Config struct {
	Path            string
	SearchPaths     []string
	GitRoots        []GitRoot
	CacheDir        string
	HostBindings    string
	StrictVariables bool
	LogLevel        string
}

// GitRoot is a search root cloned from a git repository. Exactly one of
// Rev, Tag or Branch selects the revision; Rev takes precedence.
type GitRoot struct {
	Name   string
	URL    string
	Rev    string
	Tag    string
	Branch string
}

type configDisk struct {
	SearchPaths     []string      `yaml:"search_paths" toml:"search_paths"`
	GitRoots        []gitRootDisk `yaml:"git_roots" toml:"git_roots"`
	CacheDir        string        `yaml:"cache_dir" toml:"cache_dir"`
	HostBindings    string        `yaml:"host_bindings" toml:"host_bindings"`
	StrictVariables bool          `yaml:"strict_variables" toml:"strict_variables"`
	LogLevel        string        `yaml:"log_level" toml:"log_level"`
}

type gitRootDisk struct {
	Name   string `yaml:"name" toml:"name"`
	URL    string `yaml:"url" toml:"url"`
	Rev    string `yaml:"rev" toml:"rev"`
	Tag    string `yaml:"tag" toml:"tag"`
	Branch string `yaml:"branch" toml:"branch"`
}

// LoadConfig parses a session config, choosing the codec by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	var raw configDisk
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).Strict(true).Decode(&raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", abs, err)
		}
	case ".yml", ".yaml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parse %s: %w", abs, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file %s", abs)
	}

	cfg := raw.toConfig()
	cfg.Path = abs
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

// FindConfig walks from start towards the filesystem root and returns the
// first config file found, or "" when there is none.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", start, err)
	}
	for {
		for _, name := range ConfigNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("config: stat %s: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Dir is the directory relative paths in the config are resolved against.
func (c *Config) Dir() string {
	if c == nil || c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// ResolvedSearchPaths returns the configured roots made absolute, followed
// by the entries of LOOP_PATH. Without configured roots the config
// directory is searched.
func (c *Config) ResolvedSearchPaths() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if path == "" {
			return
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Dir(), path)
		}
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	paths := []string{"."}
	if c != nil && len(c.SearchPaths) > 0 {
		paths = c.SearchPaths
	}
	for _, path := range paths {
		add(path)
	}
	for _, path := range splitPathListEnv(os.Getenv(PathEnv)) {
		add(path)
	}
	return out
}

// ResolvedCacheDir returns the directory git roots are cloned into.
func (c *Config) ResolvedCacheDir() string {
	dir := ""
	if c != nil {
		dir = c.CacheDir
	}
	if dir == "" {
		return filepath.Join(c.Dir(), ".loop", "cache")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Dir(), dir)
	}
	return filepath.Clean(dir)
}

// ResolvedHostBindings returns the host binding file path, or "".
func (c *Config) ResolvedHostBindings() string {
	if c == nil || c.HostBindings == "" {
		return ""
	}
	if filepath.IsAbs(c.HostBindings) {
		return c.HostBindings
	}
	return filepath.Join(c.Dir(), c.HostBindings)
}

// LockfilePath is where fetched git roots are pinned.
func (c *Config) LockfilePath() string {
	return filepath.Join(c.Dir(), LockfileName)
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.GitRoots))
	for _, root := range c.GitRoots {
		if root.Name == "" {
			return fmt.Errorf("git root without name")
		}
		if root.URL == "" {
			return fmt.Errorf("git root %q: url required", root.Name)
		}
		if _, ok := seen[root.Name]; ok {
			return fmt.Errorf("git root %q declared twice", root.Name)
		}
		seen[root.Name] = struct{}{}
	}
	return nil
}

func (d configDisk) toConfig() *Config {
	cfg := &Config{
		CacheDir:        strings.TrimSpace(d.CacheDir),
		HostBindings:    strings.TrimSpace(d.HostBindings),
		StrictVariables: d.StrictVariables,
		LogLevel:        strings.TrimSpace(d.LogLevel),
	}
	for _, path := range d.SearchPaths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			cfg.SearchPaths = append(cfg.SearchPaths, trimmed)
		}
	}
	for _, root := range d.GitRoots {
		cfg.GitRoots = append(cfg.GitRoots, GitRoot{
			Name:   sanitizeSegment(root.Name),
			URL:    strings.TrimSpace(root.URL),
			Rev:    strings.TrimSpace(root.Rev),
			Tag:    strings.TrimSpace(root.Tag),
			Branch: strings.TrimSpace(root.Branch),
		})
	}
	return cfg
}

func splitPathListEnv(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sanitizeSegment(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "-", "_")
	return strings.ToLower(name)
}
