package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/playwright-enhanced/pwe/browser"
	"github.com/playwright-enhanced/pwe/common"
)

// resolution is the configuration a test runs with on each engine.
type resolution struct {
	Test    string             `json:"test" yaml:"test"`
	Engines []engineResolution `json:"engines" yaml:"engines"`
}

type engineResolution struct {
	Engine  string               `json:"engine" yaml:"engine"`
	SlowMo  float64              `json:"slow_mo" yaml:"slow_mo"`
	Launch  common.LaunchConfig  `json:"launch" yaml:"launch"`
	Context common.ContextConfig `json:"context" yaml:"context"`
}

func newResolveCommand(lookupEnv env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve <test name>",
		Short: "Print the browser configuration a test runs with",
		Long: `Print the engines a test runs on and the launch and context
parameters it gets on each of them, given the run flags and the
overrides of the config file. Markers attached in the test code are
not known to the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("%w: invalid format %q: must be one of yaml, json", common.ErrUsage, format)
			}
			opts, _, err := loadOptions(cmd.Flags(), lookupEnv)
			if err != nil {
				return err
			}
			res, err := resolve(opts, args[0])
			if err != nil {
				return err
			}
			return writeResolution(cmd.OutOrStdout(), format, res)
		},
	}
	browser.AddFlags(cmd.Flags())
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml|json)")

	return cmd
}

func resolve(opts *browser.Options, test string) (*resolution, error) {
	item := common.NewItem(test, opts.OverrideMarkers(test)...)
	engines, err := browser.AllowedEngines(item, opts.Engines())
	if err != nil {
		return nil, err
	}

	r := browser.NewResolver(opts, nil)
	res := &resolution{Test: test}
	for _, e := range engines {
		launch, err := r.LaunchConfig(item, e)
		if err != nil {
			return nil, err
		}
		contextCfg, err := r.ContextConfig(item)
		if err != nil {
			return nil, err
		}
		slowMo, err := r.SlowMo(item)
		if err != nil {
			return nil, err
		}
		res.Engines = append(res.Engines, engineResolution{
			Engine:  e.String(),
			SlowMo:  slowMo,
			Launch:  launch,
			Context: contextCfg,
		})
	}
	return res, nil
}

func writeResolution(w io.Writer, format string, res *resolution) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return err
	}
	return enc.Close()
}
