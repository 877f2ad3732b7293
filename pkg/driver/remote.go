package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"loop/frontend-go/pkg/logging"
)

// maxParallelFetches bounds concurrent clones in FetchRoots.
const maxParallelFetches = 4

// GitFetcher clones git search roots into <CacheDir>/roots/<name>/<version>.
type GitFetcher struct {
	CacheDir string
	Logger   *pterm.Logger
}

// NewGitFetcher returns a fetcher rooted at cacheDir.
func NewGitFetcher(cacheDir string, logger *pterm.Logger) (*GitFetcher, error) {
	if strings.TrimSpace(cacheDir) == "" {
		return nil, errors.New("git fetcher: cache directory required")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &GitFetcher{CacheDir: cacheDir, Logger: logger}, nil
}

// Fetch ensures root is checked out and returns its lock entry together with
// the checkout directory. A checkout for an explicit rev that already exists
// is reused without touching the network.
func (g *GitFetcher) Fetch(ctx context.Context, root GitRoot) (*LockedRoot, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(root.URL)
	if url == "" {
		return nil, "", fmt.Errorf("git root %q: url required", root.Name)
	}
	name := sanitizeSegment(root.Name)

	baseDir := filepath.Join(g.CacheDir, "roots", sanitizePathSegment(name))
	co, err := g.reuseCheckout(baseDir, root)
	if err != nil {
		return nil, "", fmt.Errorf("git root %q: %w", name, err)
	}
	if co == nil {
		if co, err = g.cloneCheckout(ctx, baseDir, url, root); err != nil {
			return nil, "", fmt.Errorf("git root %q: %w", name, err)
		}
	}

	checksum, err := dirChecksum(co.dir)
	if err != nil {
		return nil, "", fmt.Errorf("git root %q: checksum: %w", name, err)
	}
	g.Logger.Debug("git root ready", g.Logger.Args("root", name, "version", co.version, "dir", co.dir))

	return &LockedRoot{
		Name:     name,
		Version:  co.version,
		Source:   gitSource(url, co.commit),
		Commit:   co.commit,
		Checksum: checksum,
	}, co.dir, nil
}

// checkout is one materialised revision of a git root.
type checkout struct {
	dir     string
	version string
	commit  string
}

// CheckoutDir is where a locked root lives in the cache. The directory may
// not exist yet.
func (g *GitFetcher) CheckoutDir(entry *LockedRoot) string {
	return filepath.Join(g.CacheDir, "roots", sanitizePathSegment(entry.Name), sanitizePathSegment(entry.Version))
}

// FetchRoots fetches every root, pinning each to lock when possible, and
// records the results in lock. The checkout directories are returned in the
// order of roots.
func (g *GitFetcher) FetchRoots(ctx context.Context, roots []GitRoot, lock *Lockfile) ([]string, error) {
	dirs := make([]string, len(roots))
	entries := make([]*LockedRoot, len(roots))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelFetches)
	for i, root := range roots {
		root = lock.Pin(root)
		group.Go(func() error {
			entry, dir, err := g.Fetch(ctx, root)
			if err != nil {
				return err
			}
			entries[i] = entry
			dirs[i] = dir
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		lock.Put(entry)
	}
	return dirs, nil
}

// reuseCheckout looks for a cached checkout of an explicit rev. Checkouts
// are named after their pinned version, so candidates are the directories
// named rev or prefixed by it. A candidate qualifies only when rev resolves,
// inside the checkout itself, to the commit its HEAD is detached at. Tags and
// branches can move and are never reused.
func (g *GitFetcher) reuseCheckout(baseDir string, root GitRoot) (*checkout, error) {
	rev := strings.TrimSpace(root.Rev)
	if rev == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	prefix := sanitizePathSegment(rev)
	for _, entry := range entries {
		dirName := entry.Name()
		if !entry.IsDir() || (dirName != prefix && !strings.HasPrefix(dirName, prefix+"_")) {
			continue
		}
		dir := filepath.Join(baseDir, dirName)
		commit, err := checkoutCommit(dir, rev)
		if err != nil {
			g.Logger.Debug("skipping cached checkout", g.Logger.Args("dir", dir, "error", err))
			continue
		}
		g.Logger.Debug("reusing checkout", g.Logger.Args("dir", dir, "commit", commit))
		return &checkout{dir: dir, version: gitPinnedVersion(rev, commit), commit: commit}, nil
	}
	return nil, nil
}

// checkoutCommit returns the commit HEAD of the checkout at dir points to,
// provided rev resolves to that same commit.
func checkoutCommit(dir, rev string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	want, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", err
	}
	if *want != head.Hash() {
		return "", fmt.Errorf("checkout is at %s, %s is %s", head.Hash(), rev, want)
	}
	return head.Hash().String(), nil
}

// cloneCheckout clones url into a scratch directory under baseDir, checks out
// the requested revision and moves the result to its pinned version name.
func (g *GitFetcher) cloneCheckout(ctx context.Context, baseDir, url string, root GitRoot) (*checkout, error) {
	revision, descriptor, err := gitRevision(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	scratch, err := os.MkdirTemp(baseDir, ".clone-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	g.Logger.Debug("cloning git root", g.Logger.Args("url", url, "revision", string(revision)))
	repo, err := git.PlainCloneContext(ctx, scratch, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	co := &checkout{version: gitPinnedVersion(descriptor, hash.String()), commit: hash.String()}
	co.dir = filepath.Join(baseDir, sanitizePathSegment(co.version))
	if info, err := os.Stat(co.dir); err == nil && info.IsDir() {
		return co, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return nil, fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.Rename(scratch, co.dir); err != nil {
		return nil, err
	}
	return co, nil
}

func gitRevision(root GitRoot) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(root.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(root.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(root.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git roots require rev, tag, or branch")
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitSource(url, commit string) string {
	return fmt.Sprintf("git+%s@%s", url, commit)
}

// dirChecksum hashes file names and contents under path, skipping git metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
