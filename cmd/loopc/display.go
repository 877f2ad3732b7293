package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"loop/frontend-go/pkg/verifier"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
)

// printError prints a Go error under a highlighted tag.
func (c *cli) printError(tag string, err error) {
	fmt.Fprintln(c.stderr, ErrorStyleBG.Sprint(tag)+ErrorColorFG.Sprint(" "+err.Error()))
}

// printSuccess prints a highlighted tag followed by a message.
func (c *cli) printSuccess(tag, msg string) {
	fmt.Fprintln(c.stdout, SuccessStyleBG.Sprint(tag)+SuccessColorFG.Sprint(" "+msg))
}

func (c *cli) printDiagnostic(path string, diag verifier.Diagnostic) {
	fmt.Fprintln(c.stderr, ErrorStyleBG.Sprint("Verify Error")+" "+InfoColorFG.Sprint(verifier.Describe(path, diag)))
}
