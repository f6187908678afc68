package cmd

import (
	"context"
	"fmt"

	"urlboard/internal/models"
	"urlboard/internal/modules/filereader"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newImportCommand(ctx context.Context, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add URLs listed in a CSV file",
		Long:  `Add every URL from the first column of a CSV file. The first row is treated as a header. Rows that fail validation are skipped.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(ctx, cmd, opts, logger, level)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			urlChan := make(chan string, 50)
			readErr := make(chan error, 1)

			logger.Info("starting URL import", zap.String("csv_path", csvPath))
			go func() {
				readErr <- filereader.New(csvPath).ReadURLs(ctx, urlChan, logger)
			}()

			added, rejected := 0, 0
			for url := range urlChan {
				if err := a.pipeline.Run(ctx, &models.Submission{Candidate: url}); err != nil {
					logger.Warn("import row rejected", zap.String("url", url), zap.Error(err))
					rejected++
					continue
				}
				added++
			}
			if err := <-readErr; err != nil {
				return fmt.Errorf("read csv: %w", err)
			}

			logger.Info("import statistics",
				zap.Int("added", added),
				zap.Int("rejected", rejected))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, rejected %d\n", added, rejected)
			return nil
		},
	}
	cmd.Flags().StringVarP(&csvPath, "csv", "c", "", "Path to CSV file containing URLs")
	cmd.MarkFlagRequired("csv")
	return cmd
}
