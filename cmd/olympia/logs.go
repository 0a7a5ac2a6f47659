package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Fetch the current activity log and append new events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}

			report, err := application.SyncActivityLog(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync activity log: %w", err)
			}

			fmt.Println(report.String())
			return nil
		},
	}
}
