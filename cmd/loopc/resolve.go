package main

import (
	"errors"
	"fmt"
	"strings"

	"loop/frontend-go/pkg/driver"
)

func (c *cli) runResolve(args []string) int {
	opts, err := parseCommandOptions(args, false)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if len(opts.positional) != 1 {
		fmt.Fprintln(c.stderr, "loopc resolve expects exactly one module name")
		return 1
	}
	env, err := c.loadEnvironment(opts.configPath)
	if err != nil {
		c.printError("Config Error", err)
		return 1
	}
	checkouts, err := env.lockedCheckouts()
	if err != nil {
		c.printError("Config Error", err)
		return 1
	}

	session := driver.NewSession(
		driver.WithLogger(env.logger),
		driver.WithSearchPaths(env.cfg.ResolvedSearchPaths()...),
		driver.WithCompiler(driver.CompilerFunc(checkSource)),
	)
	session.AppendSearchPaths(checkouts...)

	chain := driver.SplitModuleName(opts.positional[0])
	exes, found, err := session.LoadAndCompile(chain)
	if err != nil {
		c.printError("Load Error", err)
		return 1
	}
	if !found {
		c.printError("Not Found", fmt.Errorf("module %s not found in %s", driver.ModuleName(chain), strings.Join(session.SearchPaths(), ", ")))
		return 1
	}
	for _, exe := range exes {
		fmt.Fprintf(c.stdout, "%s\t%s\t%d bytes\n", exe.Module, exe.File, len(exe.Source))
	}
	return 0
}

var errEmptySource = errors.New("empty source")

// checkSource stands in for the compiler: it only rejects empty files.
func checkSource(exe *driver.Executable) error {
	if strings.TrimSpace(exe.Source) == "" {
		return fmt.Errorf("%s: %w", exe.File, errEmptySource)
	}
	return nil
}
