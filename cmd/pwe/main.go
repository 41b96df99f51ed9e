// Command pwe inspects and prepares the browser configuration used by
// tests run with the browser package.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/playwright-enhanced/pwe/browser"
	"github.com/playwright-enhanced/pwe/common"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

func run(args []string, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	cmd := newRootCommand(lookupEnv)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	if errors.Is(err, common.ErrUsage) {
		return browser.ExitUsage
	}
	return 1
}
