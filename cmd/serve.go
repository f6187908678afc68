package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"urlboard/internal/modules/web"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(ctx context.Context, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the URL board page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, cmd, opts, logger, level)
		},
	}
	addServeFlags(cmd.Flags(), opts)
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) (err error) {
	a, err := openApp(ctx, cmd, opts, logger, level)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Close())
	}()

	handler := web.NewHandler(a.store, a.pipeline, a.cfg.MaxUploadBytes, logger)
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("serving URL board", zap.String("addr", a.cfg.ListenAddr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Warn("application shutdown triggered",
			zap.String("reason", ctx.Err().Error()),
			zap.Duration("timeout", shutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
