package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestBackends_SaveLoad(t *testing.T) {
	logger := zaptest.NewLogger(t)

	backends := map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend { return NewMemory() },
		"file":   func(t *testing.T) Backend { return NewFile(logger, t.TempDir()) },
		"sqlite": func(t *testing.T) Backend {
			b, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return b
		},
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			ctx := context.Background()

			if _, err := b.Load(ctx, "urls"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on empty backend, got %v", err)
			}

			if err := b.Save(ctx, "urls", []byte(`[{"url":"https://a.example"}]`)); err != nil {
				t.Fatalf("first save: %v", err)
			}
			if err := b.Save(ctx, "urls", []byte(`[]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := b.Load(ctx, "urls")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if string(got) != `[]` {
				t.Errorf("expected overwritten snapshot, got %s", got)
			}

			if _, err := b.Load(ctx, "other"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected keys to be independent, got %v", err)
			}
		})
	}
}

func TestFileBackend_LeavesNoTempFiles(t *testing.T) {
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()
	fb := NewFile(logger, dir)

	for i := 0; i < 3; i++ {
		if err := fb.Save(context.Background(), "urls", []byte(`[]`)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one snapshot file, got %d", len(entries))
	}
}

func TestFileBackend_UnwritableDir(t *testing.T) {
	logger := zaptest.NewLogger(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	fb := NewFile(logger, filepath.Join(blocker, "sub"))
	if err := fb.Save(context.Background(), "urls", []byte(`[]`)); err == nil {
		t.Errorf("expected error when data dir cannot be created")
	}
}

func TestOpen(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name      string
		kind      string
		dsn       string
		expectErr bool
	}{
		{name: "memory", kind: KindMemory},
		{name: "file", kind: KindFile},
		{name: "sqlite", kind: KindSQLite},
		{name: "postgres without dsn", kind: KindPostgres, expectErr: true},
		{name: "unknown", kind: "redis", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(tt.kind, t.TempDir(), tt.dsn, logger)
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			b.Close()
		})
	}
}
