package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"OlympiaTracker/internal/domain"
)

func newForumCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "forum {private|rp}",
		Short:     "Drain one forum section and synchronize its topics and messages",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.SectionPrivate), string(domain.SectionRP)},
		RunE: func(cmd *cobra.Command, args []string) error {
			section := domain.ForumSection(args[0])
			switch section {
			case domain.SectionPrivate, domain.SectionRP:
			default:
				return fmt.Errorf("unknown forum section %q", args[0])
			}

			application, err := buildApp()
			if err != nil {
				return err
			}

			report, err := application.SyncForumSection(cmd.Context(), section)
			if err != nil {
				return fmt.Errorf("sync forum %s: %w", section, err)
			}

			fmt.Println(report.String())
			return nil
		},
	}
}
