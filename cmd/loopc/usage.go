package main

import "fmt"

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  loopc resolve [--config <file>] <module.chain>")
	fmt.Fprintln(c.stderr, "  loopc verify [--config <file>] [--strict] [--bindings <file>] <unit.yml> ...")
	fmt.Fprintln(c.stderr, "  loopc fetch [--config <file>]")
	fmt.Fprintln(c.stderr, "  loopc version")
}
