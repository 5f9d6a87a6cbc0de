package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func fieldsCmd() *cobra.Command {
	var eventID string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the resolved advanced search fields of an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd)
			if err != nil {
				return err
			}
			sections, err := svc.search.Sections(context.Background(), eventID)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, sections)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tFIELD\tTYPE\tLABEL")
			for _, s := range sections {
				for _, f := range s.Fields {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, f.ID, f.Type, f.Label)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event configuration id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}
