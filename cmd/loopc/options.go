package main

import (
	"fmt"
	"strings"
)

type commandOptions struct {
	configPath   string
	bindingsPath string
	strict       bool
	positional   []string
}

// parseCommandOptions understands --config, --bindings and, when allowed,
// --strict. Everything after "--" is positional.
func parseCommandOptions(args []string, allowVerifyFlags bool) (commandOptions, error) {
	var opts commandOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			opts.positional = append(opts.positional, args[i+1:]...)
			break
		}
		switch {
		case arg == "--config" || arg == "--bindings":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s expects a value", arg)
			}
			if arg == "--bindings" && !allowVerifyFlags {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			opts.set(arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--config="):
			opts.configPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "--bindings=") && allowVerifyFlags:
			opts.bindingsPath = strings.TrimPrefix(arg, "--bindings=")
		case arg == "--strict" && allowVerifyFlags:
			opts.strict = true
		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			opts.positional = append(opts.positional, arg)
		}
	}
	return opts, nil
}

func (o *commandOptions) set(flag, value string) {
	switch flag {
	case "--config":
		o.configPath = value
	case "--bindings":
		o.bindingsPath = value
	}
}
