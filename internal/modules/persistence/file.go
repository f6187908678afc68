package persistence

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const defaultDataDir = "./data" // Default directory for snapshot files

// FileBackend stores each key as one file inside a directory.
type FileBackend struct {
	dataDir string
	logger  *zap.Logger
}

// NewFile creates a FileBackend with an optional custom directory.
//
// Parameters:
//   - logger: Logger for write diagnostics.
//   - dataDir: Optional variadic parameter for the directory path. Uses defaultDataDir if not provided.
//
// Returns:
//   - A pointer to a new FileBackend instance.
func NewFile(logger *zap.Logger, dataDir ...string) *FileBackend {
	dir := defaultDataDir
	if len(dataDir) > 0 && dataDir[0] != "" {
		dir = dataDir[0]
	}
	return &FileBackend{dataDir: dir, logger: logger}
}

func (fb *FileBackend) path(key string) string {
	filename := base64.URLEncoding.EncodeToString([]byte(key)) + ".json"
	return filepath.Join(fb.dataDir, filename)
}

func (fb *FileBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fb.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	return data, nil
}

// Save replaces the snapshot atomically through a temporary file and rename.
func (fb *FileBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(fb.dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	target := fb.path(key)
	tmp, err := os.CreateTemp(fb.dataDir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace snapshot %q: %w", key, err)
	}

	fb.logger.Debug("snapshot persisted",
		zap.String("key", key),
		zap.String("filepath", target),
		zap.Int("bytes", len(data)))
	return nil
}

func (fb *FileBackend) Close() error {
	return nil
}
