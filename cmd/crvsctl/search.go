package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/opencrvs/crvs-search/internal/codec/searchparams"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Build search queries",
	}
	cmd.AddCommand(searchAdvancedCmd())
	cmd.AddCommand(searchQuickCmd())
	return cmd
}

func searchAdvancedCmd() *cobra.Command {
	var eventID, params, stateFile string
	cmd := &cobra.Command{
		Use:   "advanced",
		Short: "Build an advanced search query for one event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd)
			if err != nil {
				return err
			}
			state := toState(searchparams.Deserialize(params))
			if stateFile != "" {
				if state, err = readState(cmd, stateFile); err != nil {
					return err
				}
			}
			res, err := svc.search.Advanced(context.Background(), eventID, state)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event configuration id")
	cmd.Flags().StringVar(&params, "params", "", "Serialized search params")
	cmd.Flags().StringVar(&stateFile, "state", "", "JSON file with the search state (- for stdin)")
	_ = cmd.MarkFlagRequired("event")
	cmd.MarkFlagsMutuallyExclusive("params", "state")
	return cmd
}

func searchQuickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quick <term>...",
		Short: "Build a quick search query across all events",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd)
			if err != nil {
				return err
			}
			q, err := svc.search.Quick(context.Background(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd, q)
		},
	}
}
