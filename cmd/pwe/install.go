package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playwright-enhanced/pwe/browser"
	"github.com/playwright-enhanced/pwe/common"
	"github.com/playwright-enhanced/pwe/osext"
)

func newInstallCommand(lookupEnv env) *cobra.Command {
	var withDeps bool

	cmd := &cobra.Command{
		Use:   "install [engine...]",
		Short: "Download the toolkit driver and browsers",
		Long: `Download the toolkit driver and the browsers of the given engines,
every supported engine when none is given. --download-host and
--drivers-path choose where binaries are downloaded from and to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, logger, err := loadOptions(cmd.Flags(), lookupEnv)
			if err != nil {
				return err
			}
			engines, err := parseEngines(args)
			if err != nil {
				return err
			}
			mode := browser.AcquireYes
			if withDeps {
				mode = browser.AcquireWithDeps
			}
			return install(cmd.Context(), opts, logger, browser.NewPlaywrightBinaryAcquirer(logger, cmd.OutOrStdout()), mode, engines)
		},
	}
	browser.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&withDeps, "with-deps", false, "also install the system dependencies of the browsers")

	return cmd
}

func parseEngines(args []string) ([]common.Engine, error) {
	if len(args) == 0 {
		return common.Engines(), nil
	}
	engines := make([]common.Engine, 0, len(args))
	for _, a := range args {
		e, err := common.ParseEngine(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrUsage, err)
		}
		engines = append(engines, e)
	}
	return common.DedupEngines(engines), nil
}

// install acquires the binaries of engines with the environment of opts
// set for the duration of the download.
func install(
	ctx context.Context, opts *browser.Options, logger *common.Logger,
	acquirer browser.BinaryAcquirer, mode string, engines []common.Engine,
) error {
	scope, err := osext.Acquire(ctx, logger, opts.Environ())
	if err != nil {
		return err
	}
	defer func() { _ = scope.Release() }()

	return acquirer.Acquire(ctx, mode, engines)
}
