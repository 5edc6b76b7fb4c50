package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/config"
	"github.com/blagoySimandov/nem12ingest/internal/pipeline"
	"github.com/blagoySimandov/nem12ingest/internal/script"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func ingestCmd(cfg *config.Config) *cobra.Command {
	var (
		file      string
		outputDir string
		prefix    string
		workers   int
		queueSize int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Convert a NEM12 file into a meter_readings insert script",
		Long: `Streams the file through the block framer and a pool of parser workers and
appends one INSERT statement per NMI block to a timestamped .sql file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			stdout := cmd.OutOrStdout()

			if file == "" {
				fmt.Fprintln(stderr, "Error: --file argument is required")
				return nil
			}
			if _, err := os.Stat(file); err != nil {
				fmt.Fprintf(stderr, "Error: File %s does not exist\n", file)
				return nil
			}

			fmt.Fprintf(stdout, "Processing file: %s\n", file)

			coordinator := pipeline.NewCoordinator(pipeline.Config{
				RunID:      uuid.New().String(),
				OutputPath: script.OutputPath(outputDir, prefix, time.Now()),
				Workers:    workers,
				QueueSize:  queueSize,
			})
			outputPath := coordinator.Config().OutputPath

			stats, err := coordinator.Run(cmd.Context(), file)
			if errors.Is(err, pipeline.ErrInputUnavailable) {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return nil
			}
			if err != nil {
				return err
			}

			if stats.Statements == 0 {
				fmt.Fprintln(stdout, "Processing complete. No readings found, nothing written.")
				return nil
			}
			fmt.Fprintf(stdout, "Processing complete. Output written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the NEM12 file")
	cmd.Flags().StringVar(&outputDir, "output-dir", cfg.OutputDir, "directory for the generated script")
	cmd.Flags().StringVar(&prefix, "output-prefix", cfg.OutputPrefix, "file name prefix for the generated script")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "number of parser workers")
	cmd.Flags().IntVar(&queueSize, "queue-size", cfg.QueueSize, "capacity of the block queue")

	return cmd
}
