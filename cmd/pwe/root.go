package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/playwright-enhanced/pwe/browser"
	"github.com/playwright-enhanced/pwe/common"
)

type env func(string) (string, bool)

func newRootCommand(lookupEnv env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pwe",
		Short: "Browser fixtures for go test",
		Long: `pwe prepares and inspects the browser configuration of tests using
the browser package. Every command accepts the flags understood by
browser.Main, read from the command line, PWE_* environment variables
and the --pwe-config file, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newInstallCommand(lookupEnv))
	cmd.AddCommand(newResolveCommand(lookupEnv))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// loadOptions reads the run options from the flags of cmd.
func loadOptions(fs *pflag.FlagSet, lookupEnv env) (*browser.Options, *common.Logger, error) {
	opts, err := browser.LoadOptionsFromFlags(fs, lookupEnv)
	if err != nil {
		return nil, nil, err
	}
	logger, err := common.NewStderrLogger(opts.LogLevel, opts.LogFilter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrUsage, err)
	}
	return opts, logger, nil
}
