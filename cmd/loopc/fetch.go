package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"loop/frontend-go/pkg/driver"
)

func (c *cli) runFetch(args []string) int {
	opts, err := parseCommandOptions(args, false)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if len(opts.positional) > 0 {
		fmt.Fprintf(c.stderr, "unexpected arguments: %v\n", opts.positional)
		return 1
	}
	env, err := c.loadEnvironment(opts.configPath)
	if err != nil {
		c.printError("Config Error", err)
		return 1
	}
	if env.cfg.Path == "" {
		c.printError("Config Error", errConfigNotFound)
		return 1
	}

	lockPath := env.cfg.LockfilePath()
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.printError("Lockfile Error", err)
			return 1
		}
		lock = driver.NewLockfile(cliToolVersion)
	}
	lock.Tool = cliToolVersion

	fetcher, err := env.fetcher()
	if err != nil {
		c.printError("Fetch Error", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dirs, err := fetcher.FetchRoots(ctx, env.cfg.GitRoots, lock)
	if err != nil {
		c.printError("Fetch Error", err)
		return 1
	}
	lock.Generated = ""
	if err := driver.WriteLockfile(lock, lockPath); err != nil {
		c.printError("Lockfile Error", err)
		return 1
	}
	for i, root := range env.cfg.GitRoots {
		c.printSuccess("Fetched", fmt.Sprintf("%s -> %s", root.Name, dirs[i]))
	}
	return 0
}
