package main

import (
	"fmt"

	"loop/frontend-go/pkg/ast"
	"loop/frontend-go/pkg/hosttypes"
	"loop/frontend-go/pkg/verifier"
)

func (c *cli) runVerify(args []string) int {
	opts, err := parseCommandOptions(args, true)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if len(opts.positional) == 0 {
		fmt.Fprintln(c.stderr, "loopc verify expects at least one unit file")
		return 1
	}
	env, err := c.loadEnvironment(opts.configPath)
	if err != nil {
		c.printError("Config Error", err)
		return 1
	}

	registry := hosttypes.Default()
	bindings := opts.bindingsPath
	if bindings == "" {
		bindings = env.cfg.ResolvedHostBindings()
	}
	if bindings != "" {
		if err := registry.LoadFile(bindings); err != nil {
			c.printError("Config Error", err)
			return 1
		}
	}

	verifyOpts := []verifier.Option{
		verifier.WithTypeResolver(registry),
		verifier.WithLogger(env.logger),
	}
	if opts.strict || env.cfg.StrictVariables {
		verifyOpts = append(verifyOpts, verifier.WithStrictVariables())
	}

	status := 0
	for _, path := range opts.positional {
		unit, err := ast.LoadUnitFile(path)
		if err != nil {
			c.printError("Fixture Error", err)
			status = 1
			continue
		}
		diags := verifier.Verify(unit, verifyOpts...)
		for _, diag := range diags {
			c.printDiagnostic(path, diag)
		}
		if len(diags) > 0 {
			status = 1
			continue
		}
		c.printSuccess("OK", path)
	}
	return status
}
