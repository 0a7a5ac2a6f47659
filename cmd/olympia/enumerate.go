package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnumerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enumerate",
		Short: "Discover every profile id and synchronize the characters",
		Long: "Walks the id space in both directions from the origin until the site " +
			"reports no more profiles, then reconciles every discovered character " +
			"against the tracker store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}

			report, err := application.EnumerateCharacters(cmd.Context())
			if err != nil {
				return fmt.Errorf("enumerate characters: %w", err)
			}

			fmt.Println(report.String())
			return nil
		},
	}
}
