package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pterm/pterm"

	"loop/frontend-go/pkg/driver"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Loop CLI",
			Email: "loop@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

// captureCLI runs the command with buffered output streams.
func captureCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(driver.PathEnv, "")
	var stdout, stderr bytes.Buffer
	code := (&cli{stdout: &stdout, stderr: &stderr}).run(args)
	return code, stdout.String(), stderr.String()
}

func TestVersionAndUsage(t *testing.T) {
	code, stdout, _ := captureCLI(t, "version")
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version = %d %q", code, stdout)
	}

	code, _, stderr := captureCLI(t)
	if code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("no args = %d %q", code, stderr)
	}

	code, _, stderr = captureCLI(t, "--help")
	if code != 0 || !strings.Contains(stderr, "loopc verify") {
		t.Fatalf("--help = %d %q", code, stderr)
	}

	code, _, stderr = captureCLI(t, "explode")
	if code != 1 || !strings.Contains(stderr, `unknown command "explode"`) {
		t.Fatalf("unknown command = %d %q", code, stderr)
	}
}

func TestResolveUsesConfiguredSearchPaths(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "loop.yml")
	writeFile(t, config, `
search_paths: [src]
log_level: disabled
`)
	writeFile(t, filepath.Join(dir, "src", "app", "main.loop"), "main() =>\n  1")

	code, stdout, stderr := captureCLI(t, "resolve", "--config", config, "app.main")
	if code != 0 {
		t.Fatalf("resolve exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "app/main\t"+filepath.Join(dir, "src", "app", "main.loop")) {
		t.Fatalf("unexpected output %q", stdout)
	}

	code, stdout, _ = captureCLI(t, "resolve", "--config="+config, "prelude")
	if code != 0 || !strings.HasPrefix(stdout, "prelude\t") {
		t.Fatalf("resolve prelude = %d %q", code, stdout)
	}

	code, _, stderr = captureCLI(t, "resolve", "--config", config, "app/missing")
	if code != 1 || !strings.Contains(stderr, "module app/missing not found") {
		t.Fatalf("resolve missing = %d %q", code, stderr)
	}
}

func TestResolveReportsCompileFailure(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "loop.toml")
	writeFile(t, config, `search_paths = ["."]`)
	if err := os.WriteFile(filepath.Join(dir, "blank.loop"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := captureCLI(t, "resolve", "--config", config, "blank")
	if code != 1 || !strings.Contains(stderr, "empty source") {
		t.Fatalf("resolve blank = %d %q", code, stderr)
	}
}

func TestVerifyPrintsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.yml")
	writeFile(t, clean, `
module: clean
requires: {HashMap: java.util.HashMap}
functions:
  - name: main
    body:
      - {type: Call, name: helper, args: [{type: Other, label: "1"}]}
      - {type: ConstructorCall, name: HashMap}
    where:
      - {type: FunctionDecl, name: helper, params: [x], body: [{type: Variable, name: x}]}
`)
	broken := filepath.Join(dir, "broken.yml")
	writeFile(t, broken, `
module: broken
functions:
  - name: main
    body:
      - {type: Call, name: ghost, at: {line: 3, column: 5}}
      - {type: Variable, name: free, at: {line: 4, column: 2}}
`)

	code, stdout, stderr := captureCLI(t, "verify", "--config", filepath.Join(dir, "none.yml"), clean)
	if code != 1 || !strings.Contains(stderr, "none.yml") {
		t.Fatalf("missing config should fail: %d %q", code, stderr)
	}

	writeFile(t, filepath.Join(dir, "loop.yml"), "log_level: error")
	config := filepath.Join(dir, "loop.yml")

	code, stdout, stderr = captureCLI(t, "verify", "--config", config, clean)
	if code != 0 || !strings.Contains(stdout, "OK "+clean) {
		t.Fatalf("verify clean = %d stdout=%q stderr=%q", code, stdout, stderr)
	}

	code, _, stderr = captureCLI(t, "verify", "--config", config, broken)
	if code != 1 {
		t.Fatalf("verify broken exit %d", code)
	}
	if !strings.Contains(stderr, broken+":3:5: Cannot resolve function: ghost") {
		t.Fatalf("diagnostic missing: %q", stderr)
	}
	if strings.Contains(stderr, "Cannot resolve variable") {
		t.Fatalf("variables reported without --strict: %q", stderr)
	}

	_, _, stderr = captureCLI(t, "verify", "--config", config, "--strict", broken)
	if !strings.Contains(stderr, broken+":4:2: Cannot resolve variable: free") {
		t.Fatalf("strict diagnostic missing: %q", stderr)
	}
}

func TestVerifyLoadsHostBindings(t *testing.T) {
	dir := t.TempDir()
	unit := filepath.Join(dir, "unit.yml")
	writeFile(t, unit, `
module: rockets
requires: {Rocket: acme.Rocket}
functions:
  - name: launch
    body:
      - {type: ConstructorCall, name: Rocket, args: [{type: Other, label: fuel}]}
`)
	config := filepath.Join(dir, "loop.yml")
	writeFile(t, config, "log_level: disabled")

	if code, _, _ := captureCLI(t, "verify", "--config", config, unit); code != 1 {
		t.Fatalf("unknown host type accepted")
	}

	bindings := filepath.Join(dir, "acme.toml")
	writeFile(t, bindings, `
[[types]]
name = "acme.Rocket"
constructors = [1]
`)
	if code, _, stderr := captureCLI(t, "verify", "--config", config, "--bindings", bindings, unit); code != 0 {
		t.Fatalf("verify with bindings = %d %q", code, stderr)
	}
}

func TestFetchThenResolveFromGitRoot(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "shared", "strings.loop"), "upper(s) =>\n  s")
	rev := initGitRepo(t, repo)

	project := filepath.Join(root, "project")
	config := filepath.Join(project, "loop.yml")
	writeFile(t, config, `
log_level: disabled
cache_dir: cache
git_roots:
  - name: shared
    url: `+repo+`
    rev: `+rev+`
`)

	code, stdout, stderr := captureCLI(t, "fetch", "--config", config)
	if code != 0 {
		t.Fatalf("fetch exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Fetched shared") {
		t.Fatalf("fetch output %q", stdout)
	}
	lock, err := driver.LoadLockfile(filepath.Join(project, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if entry := lock.Lookup("shared"); entry == nil || entry.Commit != rev || lock.Tool != cliToolVersion {
		t.Fatalf("lockfile = %#v", lock)
	}

	code, stdout, stderr = captureCLI(t, "resolve", "--config", config, "shared.strings")
	if code != 0 || !strings.Contains(stdout, "shared/strings") {
		t.Fatalf("resolve from git root = %d %q %q", code, stdout, stderr)
	}

	// Pointing the root elsewhere retires the old checkout until the next fetch.
	writeFile(t, config, `
log_level: warn
cache_dir: cache
git_roots:
  - name: shared
    url: `+filepath.Join(root, "moved")+`
    rev: `+rev+`
`)
	code, _, stderr = captureCLI(t, "resolve", "--config", config, "shared.strings")
	if code != 1 || !strings.Contains(stderr, "module shared/strings not found") {
		t.Fatalf("resolve after url change = %d %q", code, stderr)
	}
	if !strings.Contains(stderr, "url changed") {
		t.Fatalf("missing url change warning: %q", stderr)
	}
}

func TestFetchRequiresConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := captureCLI(t, "fetch")
	if code != 1 || !strings.Contains(stderr, "not found") {
		t.Fatalf("fetch without config = %d %q", code, stderr)
	}
}

func TestParseCommandOptions(t *testing.T) {
	opts, err := parseCommandOptions([]string{"--config", "a.yml", "--strict", "--bindings=b.toml", "x.yml", "--", "--odd.yml"}, true)
	if err != nil {
		t.Fatalf("parseCommandOptions: %v", err)
	}
	if opts.configPath != "a.yml" || opts.bindingsPath != "b.toml" || !opts.strict {
		t.Fatalf("opts = %#v", opts)
	}
	if strings.Join(opts.positional, ",") != "x.yml,--odd.yml" {
		t.Fatalf("positional = %v", opts.positional)
	}

	if _, err := parseCommandOptions([]string{"--strict"}, false); err == nil {
		t.Fatalf("--strict accepted outside verify")
	}
	if _, err := parseCommandOptions([]string{"--config"}, false); err == nil {
		t.Fatalf("missing --config value accepted")
	}
}
