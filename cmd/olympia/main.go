// Package main provides the entry point for the olympia ingestion CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"OlympiaTracker/internal/app"
	"OlympiaTracker/internal/config"
	"OlympiaTracker/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:   "olympia",
		Short: "Discovers and synchronizes game-site profiles, logs, and forums into the tracker store",
	}

	rootCmd.AddCommand(
		newEnumerateCmd(),
		newLogsCmd(),
		newForumCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// buildApp assembles the application from config and environment.
func buildApp() (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger)
}
