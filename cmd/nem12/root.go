package main

import (
	"github.com/blagoySimandov/nem12ingest/internal/config"
	"github.com/blagoySimandov/nem12ingest/internal/logger"
	"github.com/spf13/cobra"
)

// RootCmd builds the nem12 command tree. Flag defaults come from the
// environment so the CLI and the server share one configuration.
func RootCmd() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:          "nem12",
		Short:        "nem12 turns NEM12 meter data files into SQL insert scripts.",
		SilenceUsage: true,
	}

	logLevel := cmd.PersistentFlags().String("log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.SetLevel(*logLevel)
	}

	cmd.AddCommand(
		ingestCmd(cfg),
		loadCmd(cfg),
	)

	return cmd
}
