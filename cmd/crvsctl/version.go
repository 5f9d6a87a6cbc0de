package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencrvs/crvs-search/internal/version"
)

func versionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print crvsctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return printJSON(cmd, version.Get())
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
