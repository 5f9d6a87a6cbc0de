package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/opencrvs/crvs-search/internal/domain/event"
)

func diffCmd() *cobra.Command {
	var eventID, previousFile, currentFile, annotationFile string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compute a correction diff between two declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd)
			if err != nil {
				return err
			}
			previous, err := readState(cmd, previousFile)
			if err != nil {
				return err
			}
			current, err := readState(cmd, currentFile)
			if err != nil {
				return err
			}
			var annotation event.State
			if annotationFile != "" {
				if annotation, err = readState(cmd, annotationFile); err != nil {
					return err
				}
			}
			res, err := svc.corrections.Diff(context.Background(), eventID, previous, current, annotation)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event configuration id")
	cmd.Flags().StringVar(&previousFile, "previous", "", "JSON file with the previous declaration")
	cmd.Flags().StringVar(&currentFile, "current", "", "JSON file with the corrected declaration")
	cmd.Flags().StringVar(&annotationFile, "annotation", "", "JSON file with the correction annotation")
	for _, f := range []string{"event", "previous", "current"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
