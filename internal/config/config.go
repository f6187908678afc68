package config

import (
	"errors"
	"fmt"
	"os"

	"urlboard/internal/modules/persistence"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultListenAddr     = "127.0.0.1:8080"
	DefaultBackend        = persistence.KindFile
	DefaultDataDir        = "./data"
	DefaultStorageKey     = "urls"
	DefaultMaxUploadBytes = 10 << 20
	DefaultLogLevel       = "info"
)

// Config is the runtime configuration of urlboard.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	Backend        string `yaml:"backend"`
	DataDir        string `yaml:"data_dir"`
	DSN            string `yaml:"dsn"`
	StorageKey     string `yaml:"storage_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	LogLevel       string `yaml:"log_level"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		Backend:        DefaultBackend,
		DataDir:        DefaultDataDir,
		StorageKey:     DefaultStorageKey,
		MaxUploadBytes: DefaultMaxUploadBytes,
		LogLevel:       DefaultLogLevel,
	}
}

// Load returns defaults overlaid with the YAML file at path.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Backend {
	case persistence.KindMemory, persistence.KindFile, persistence.KindSQLite:
	case persistence.KindPostgres:
		if c.DSN == "" {
			return errors.New("config: postgres backend requires dsn")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.StorageKey == "" {
		return errors.New("config: storage_key must not be empty")
	}
	return nil
}
