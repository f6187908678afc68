package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"urlboard/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newListCommand(ctx context.Context, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the stored URLs in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(ctx, cmd, opts, logger, level)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			out := cmd.OutOrStdout()
			for i, rec := range a.store.Records() {
				marker := ""
				if rec.Image != "" {
					marker = " [image]"
				}
				fmt.Fprintf(out, "%d\t%s%s\n", i, rec.URL, marker)
			}
			return nil
		},
	}
}

func newAddCommand(ctx context.Context, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Add a URL, optionally with an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(ctx, cmd, opts, logger, level)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			sub := &models.Submission{Candidate: args[0]}
			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return fmt.Errorf("open image: %w", err)
				}
				defer f.Close()
				sub.Image = &models.Attachment{Name: filepath.Base(imagePath), Reader: f}
			}

			if err := a.pipeline.Run(ctx, sub); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%d records)\n", sub.Record.URL, a.store.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to an image to attach")
	return cmd
}

func newRemoveCommand(ctx context.Context, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	return &cobra.Command{
		Use:   "remove INDEX",
		Short: "Remove the URL at the given position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			a, err := openApp(ctx, cmd, opts, logger, level)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			if err := a.store.RemoveAt(ctx, index); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed #%d (%d records)\n", index, a.store.Len())
			return nil
		},
	}
}
