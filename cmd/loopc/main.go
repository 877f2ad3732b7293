package main

import (
	"fmt"
	"io"
	"os"
)

const cliToolVersion = "loopc 0.1.0-dev"

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return (&cli{stdout: os.Stdout, stderr: os.Stderr}).run(args)
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		c.printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "resolve":
		return c.runResolve(args[1:])
	case "verify":
		return c.runVerify(args[1:])
	case "fetch":
		return c.runFetch(args[1:])
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n", args[0])
		c.printUsage()
		return 1
	}
}
