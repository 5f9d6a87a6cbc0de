package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencrvs/crvs-search/internal/codec/searchparams"
)

func paramsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Convert search state to and from URL params",
	}
	cmd.AddCommand(paramsEncodeCmd())
	cmd.AddCommand(paramsDecodeCmd())
	return cmd
}

func paramsEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <json>",
		Short: "Serialize a JSON search state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state map[string]any
			if err := json.Unmarshal([]byte(args[0]), &state); err != nil {
				return fmt.Errorf("parse state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), searchparams.Serialize(state))
			return nil
		},
	}
}

func paramsDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <query>",
		Short: "Deserialize URL params into a JSON search state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, searchparams.Deserialize(args[0]))
		},
	}
}
