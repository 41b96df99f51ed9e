package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playwright-enhanced/pwe/browser"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "pwe %s\n", browser.Version())
			return err
		},
	}
}
