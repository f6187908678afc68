package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("key not found")

// Backend is a durable key-value store holding whole snapshots.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// MemoryBackend keeps snapshots in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty MemoryBackend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

// Backend kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Open builds the backend named by kind.
//
// Parameters:
//   - kind: One of KindMemory, KindFile, KindSQLite or KindPostgres.
//   - dataDir: Directory for file and SQLite backends.
//   - dsn: Connection string for the PostgreSQL backend.
//   - logger: Logger passed to backends that log.
//
// Returns:
//   - The opened backend, or an error for an unknown kind or a failed connection.
func Open(kind, dataDir, dsn string, logger *zap.Logger) (Backend, error) {
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindFile:
		return NewFile(logger, dataDir), nil
	case KindSQLite:
		if dataDir == "" {
			dataDir = defaultDataDir
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return NewSQLite(filepath.Join(dataDir, "urlboard.db"))
	case KindPostgres:
		if dsn == "" {
			return nil, errors.New("postgres backend requires a dsn")
		}
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}
