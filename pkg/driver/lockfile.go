package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName is the file fetched git roots are pinned in.
const LockfileName = "loop.lock"

// Lockfile models the loop.lock contents.
type Lockfile struct {
	Path      string
	Generated string
	Tool      string
	Roots     []*LockedRoot
}

// LockedRoot records the commit a git search root was checked out at.
type LockedRoot struct {
	Name     string
	Version  string
	Source   string
	Commit   string
	Checksum string
}

// FetchedFrom reports whether the entry was checked out from url.
func (r *LockedRoot) FetchedFrom(url string) bool {
	if r == nil || r.Commit == "" {
		return false
	}
	return r.Source == gitSource(strings.TrimSpace(url), r.Commit)
}

// NewLockfile constructs an empty lockfile stamped with the current time.
func NewLockfile(tool string) *Lockfile {
	return &Lockfile{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Roots:     []*LockedRoot{},
	}
}

// LoadLockfile parses loop.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Lookup returns the pinned entry for a root name.
func (l *Lockfile) Lookup(name string) *LockedRoot {
	if l == nil {
		return nil
	}
	name = sanitizeSegment(name)
	for _, root := range l.Roots {
		if root != nil && root.Name == name {
			return root
		}
	}
	return nil
}

// Put inserts or replaces the entry for entry.Name.
func (l *Lockfile) Put(entry *LockedRoot) {
	if l == nil || entry == nil {
		return
	}
	entry.Name = sanitizeSegment(entry.Name)
	for i, root := range l.Roots {
		if root != nil && root.Name == entry.Name {
			l.Roots[i] = entry
			return
		}
	}
	l.Roots = append(l.Roots, entry)
}

// Pin returns root with its revision fixed to the locked commit, provided
// the lock entry was fetched from the same URL and root names no explicit rev.
func (l *Lockfile) Pin(root GitRoot) GitRoot {
	if root.Rev != "" {
		return root
	}
	locked := l.Lookup(root.Name)
	if !locked.FetchedFrom(root.URL) {
		return root
	}
	root.Rev = locked.Commit
	root.Tag = ""
	root.Branch = ""
	return root
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Tool = strings.TrimSpace(l.Tool)
	roots := l.Roots[:0]
	for _, root := range l.Roots {
		if root == nil {
			continue
		}
		root.Name = sanitizeSegment(root.Name)
		root.Version = strings.TrimSpace(root.Version)
		root.Source = strings.TrimSpace(root.Source)
		root.Commit = strings.TrimSpace(root.Commit)
		root.Checksum = strings.TrimSpace(root.Checksum)
		roots = append(roots, root)
	}
	l.Roots = roots
	sort.SliceStable(l.Roots, func(i, j int) bool {
		return l.Roots[i].Name < l.Roots[j].Name
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	roots := make([]lockfileRoot, 0, len(l.Roots))
	for _, root := range l.Roots {
		roots = append(roots, lockfileRoot{
			Name:     root.Name,
			Version:  root.Version,
			Source:   root.Source,
			Commit:   root.Commit,
			Checksum: root.Checksum,
		})
	}
	return lockfileDisk{
		Generated: l.Generated,
		Tool:      l.Tool,
		Roots:     roots,
	}
}

type lockfileDisk struct {
	Generated string         `yaml:"generated"`
	Tool      string         `yaml:"tool"`
	Roots     []lockfileRoot `yaml:"roots"`
}

type lockfileRoot struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Commit   string `yaml:"commit"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
		Roots:     make([]*LockedRoot, 0, len(d.Roots)),
	}
	for _, root := range d.Roots {
		lock.Roots = append(lock.Roots, &LockedRoot{
			Name:     root.Name,
			Version:  root.Version,
			Source:   root.Source,
			Commit:   root.Commit,
			Checksum: root.Checksum,
		})
	}
	lock.normalize()
	return lock
}
