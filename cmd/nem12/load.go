package main

import (
	"fmt"
	"os"

	"github.com/blagoySimandov/nem12ingest/internal/config"
	"github.com/blagoySimandov/nem12ingest/internal/db"
	"github.com/blagoySimandov/nem12ingest/internal/loader"
	"github.com/spf13/cobra"
)

func loadCmd(cfg *config.Config) *cobra.Command {
	var (
		scriptPath string
		batchSize  int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Insert the rows of a generated script into meter_readings",
		Long: `Reads an insert script produced by "nem12 ingest" and inserts its rows in
batches. Rows that already exist for the same (nmi, timestamp) are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptPath == "" {
				return fmt.Errorf("--script argument is required")
			}

			f, err := os.Open(scriptPath)
			if err != nil {
				return err
			}
			defer f.Close()

			bunDB, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer bunDB.Close()

			l := loader.NewLoader(loader.NewBunInserter(bunDB), batchSize)
			result, err := l.Load(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("load stopped after %d statements: %w", result.Statements, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d statements: %d rows, %d inserted\n",
				result.Statements, result.Rows, result.Inserted)
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a generated insert script")
	cmd.Flags().IntVar(&batchSize, "batch-size", cfg.LoadBatchSize, "rows per insert")

	return cmd
}
