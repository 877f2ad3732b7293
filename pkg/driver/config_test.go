package driver

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loop.yml")
	writeFile(t, path, `
search_paths:
  - src
  - /opt/loop/lib
git_roots:
  - name: Shared-Lib
    url: https://example.com/shared.git
    tag: v1.2.0
cache_dir: .cache
host_bindings: bindings.toml
strict_variables: true
log_level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got, want := cfg.SearchPaths, []string{"src", "/opt/loop/lib"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchPaths = %v, want %v", got, want)
	}
	if len(cfg.GitRoots) != 1 {
		t.Fatalf("GitRoots = %#v", cfg.GitRoots)
	}
	root := cfg.GitRoots[0]
	if root.Name != "shared_lib" || root.Tag != "v1.2.0" || root.URL != "https://example.com/shared.git" {
		t.Fatalf("git root not parsed: %#v", root)
	}
	if !cfg.StrictVariables || cfg.LogLevel != "debug" {
		t.Fatalf("flags not parsed: %#v", cfg)
	}
	if got := cfg.ResolvedCacheDir(); got != filepath.Join(dir, ".cache") {
		t.Fatalf("ResolvedCacheDir = %q", got)
	}
	if got := cfg.ResolvedHostBindings(); got != filepath.Join(dir, "bindings.toml") {
		t.Fatalf("ResolvedHostBindings = %q", got)
	}
	if got := cfg.LockfilePath(); got != filepath.Join(dir, LockfileName) {
		t.Fatalf("LockfilePath = %q", got)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loop.toml")
	writeFile(t, path, `
search_paths = ["lib"]
log_level = "info"

[[git_roots]]
name = "extras"
url = "/srv/git/extras"
branch = "main"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.GitRoots) != 1 || cfg.GitRoots[0].Branch != "main" {
		t.Fatalf("GitRoots = %#v", cfg.GitRoots)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if got := cfg.ResolvedCacheDir(); got != filepath.Join(dir, ".loop", "cache") {
		t.Fatalf("default cache dir = %q", got)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "loop.yml")
	writeFile(t, yml, "search_path: [src]")
	if _, err := LoadConfig(yml); err == nil {
		t.Fatalf("expected error for unknown yaml field")
	}

	toml := filepath.Join(dir, "loop.toml")
	writeFile(t, toml, `searchpaths = ["src"]`)
	if _, err := LoadConfig(toml); err == nil {
		t.Fatalf("expected error for unknown toml field")
	}
}

func TestLoadConfigValidatesGitRoots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yml")
	writeFile(t, path, `
git_roots:
  - name: dup
    url: a
    rev: abc
  - name: dup
    url: b
    rev: def
`)
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "declared twice") {
		t.Fatalf("err = %v, want duplicate root error", err)
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	t.Setenv(PathEnv, "")
	path := filepath.Join(t.TempDir(), "loop.yml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(empty) = %v", err)
	}
	if got := cfg.ResolvedSearchPaths(); len(got) != 1 || got[0] != filepath.Dir(path) {
		t.Fatalf("ResolvedSearchPaths = %v", got)
	}
}

func TestResolvedSearchPathsAppendsEnvironment(t *testing.T) {
	dir := t.TempDir()
	extra := t.TempDir()
	t.Setenv(PathEnv, strings.Join([]string{extra, "", dir + "/src"}, string(os.PathListSeparator)))

	cfg := &Config{Path: filepath.Join(dir, "loop.yml"), SearchPaths: []string{"src", "vendor"}}
	want := []string{
		filepath.Join(dir, "src"),
		filepath.Join(dir, "vendor"),
		extra,
	}
	if got := cfg.ResolvedSearchPaths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolvedSearchPaths = %v, want %v", got, want)
	}
}

func TestFindConfigWalksParents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "loop.toml"), `log_level = "warn"`)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if got != filepath.Join(root, "loop.toml") {
		t.Fatalf("FindConfig = %q", got)
	}

	writeFile(t, filepath.Join(root, "a", "loop.yml"), `log_level: info`)
	got, err = FindConfig(nested)
	if err != nil || got != filepath.Join(root, "a", "loop.yml") {
		t.Fatalf("FindConfig = %q, %v; want nearest config", got, err)
	}
}
