package cmd

import (
	"context"
	"fmt"
	"os"

	"urlboard/internal/config"
	"urlboard/internal/modules/encoder"
	"urlboard/internal/modules/persistence"
	"urlboard/internal/modules/pipeline"
	"urlboard/internal/modules/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	configPath string
	backend    string
	dataDir    string
	dsn        string
	key        string
	logLevel   string
	listenAddr string
	maxUpload  int64
}

// Execute runs the CLI with the given context and logger.
// level is adjusted to the configured log level before a command runs.
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) {
	rootCmd := newRootCommand(ctx, logger, level)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func newRootCommand(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "urlboard",
		Short: "Keep a board of URLs with optional image previews",
		Long: `A local single-page board for adding, listing and deleting URLs.
Each URL may carry an image embedded as a data URI. The whole list is stored
as one snapshot in a local key-value backend after every change.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, cmd, opts, logger, level)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&opts.backend, "backend", config.DefaultBackend, "Storage backend (memory|file|sqlite|postgres)")
	flags.StringVar(&opts.dataDir, "data-dir", config.DefaultDataDir, "Directory for file and sqlite backends")
	flags.StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection string")
	flags.StringVar(&opts.key, "key", config.DefaultStorageKey, "Storage key holding the URL snapshot")
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	addServeFlags(rootCmd.Flags(), opts)
	pflag.CommandLine.AddFlagSet(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newServeCommand(ctx, opts, logger, level))
	rootCmd.AddCommand(newListCommand(ctx, opts, logger, level))
	rootCmd.AddCommand(newAddCommand(ctx, opts, logger, level))
	rootCmd.AddCommand(newRemoveCommand(ctx, opts, logger, level))
	rootCmd.AddCommand(newImportCommand(ctx, opts, logger, level))

	return rootCmd
}

func addServeFlags(fs *pflag.FlagSet, opts *rootOptions) {
	fs.StringVarP(&opts.listenAddr, "listen", "l", config.DefaultListenAddr, "Address to serve the board on")
	fs.Int64Var(&opts.maxUpload, "max-upload", config.DefaultMaxUploadBytes, "Maximum size in bytes of a submitted form")
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if flags.Changed("dsn") {
		cfg.DSN = opts.dsn
	}
	if flags.Changed("key") {
		cfg.StorageKey = opts.key
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.ListenAddr = opts.listenAddr
	}
	if flags.Lookup("max-upload") != nil && flags.Changed("max-upload") {
		cfg.MaxUploadBytes = opts.maxUpload
	}
	return cfg, cfg.Validate()
}

// app bundles the components a command works with.
type app struct {
	cfg      config.Config
	backend  persistence.Backend
	store    *store.Store
	pipeline *pipeline.Pipeline
}

func (a *app) Close() error {
	return a.backend.Close()
}

func openApp(ctx context.Context, cmd *cobra.Command, opts *rootOptions, logger *zap.Logger, level zap.AtomicLevel) (*app, error) {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	level.SetLevel(lvl)

	backend, err := persistence.Open(cfg.Backend, cfg.DataDir, cfg.DSN, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("storage backend opened",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir))

	st := store.New(backend, cfg.StorageKey, logger)
	st.Load(ctx)

	return &app{
		cfg:      cfg,
		backend:  backend,
		store:    st,
		pipeline: pipeline.NewSubmission(st, encoder.New(logger), logger),
	}, nil
}
