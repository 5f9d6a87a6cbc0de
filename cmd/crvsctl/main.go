package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/opencrvs/crvs-search/internal/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crvsctl",
		Short:         "Build search queries and correction diffs from event configurations",
		SilenceUsage: true,
	}
	root.Version = version.Get().String()
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().String("events", "config/events", "Directory of event configuration files")
	root.PersistentFlags().String("timezone", "UTC", "IANA timezone for date bounds")
	root.AddCommand(searchCmd())
	root.AddCommand(paramsCmd())
	root.AddCommand(fieldsCmd())
	root.AddCommand(diffCmd())
	root.AddCommand(versionCmd())
	return root
}
