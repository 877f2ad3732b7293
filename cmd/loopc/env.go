package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"loop/frontend-go/pkg/driver"
	"loop/frontend-go/pkg/logging"
)

var errConfigNotFound = errors.New("loop.yml or loop.toml not found")

type environment struct {
	cfg    *driver.Config
	logger *pterm.Logger
}

// loadEnvironment reads the explicit config, or the nearest one above the
// working directory. Without any config the defaults apply.
func (c *cli) loadEnvironment(configPath string) (*environment, error) {
	if configPath == "" {
		found, err := driver.FindConfig(".")
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	cfg := &driver.Config{}
	if configPath != "" {
		loaded, err := driver.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Writer: c.stderr})
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger}, nil
}

func (e *environment) fetcher() (*driver.GitFetcher, error) {
	return driver.NewGitFetcher(e.cfg.ResolvedCacheDir(), e.logger)
}

// lockedCheckouts lists existing checkouts of the configured git roots
// recorded in loop.lock.
func (e *environment) lockedCheckouts() ([]string, error) {
	if len(e.cfg.GitRoots) == 0 {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(e.cfg.LockfilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load lockfile: %w", err)
	}
	fetcher, err := e.fetcher()
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, root := range e.cfg.GitRoots {
		entry := lock.Lookup(root.Name)
		if entry == nil {
			e.logger.Warn("git root not fetched", e.logger.Args("root", root.Name))
			continue
		}
		if !entry.FetchedFrom(root.URL) {
			e.logger.Warn("git root url changed since fetch", e.logger.Args("root", root.Name, "source", entry.Source))
			continue
		}
		dir := fetcher.CheckoutDir(entry)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}
