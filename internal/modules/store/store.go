package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"urlboard/internal/models"
	"urlboard/internal/modules/persistence"

	"go.uber.org/zap"
)

// DefaultKey is the backend key holding the record snapshot.
const DefaultKey = "urls"

// ErrIndexOutOfRange is returned by RemoveAt for a position outside the sequence.
var ErrIndexOutOfRange = errors.New("record index out of range")

// Store holds the ordered record sequence and mirrors it to a backend.
//
// Every mutation rewrites the whole snapshot, which costs O(n) per change.
// A failed read or an unparsable snapshot switches the store to memory only
// for the rest of the session, so the stored snapshot is never overwritten
// with a partial list. A failed write marks the store degraded until the next
// successful write.
type Store struct {
	mu         sync.Mutex
	backend    persistence.Backend
	key        string
	logger     *zap.Logger
	records    []models.Record
	loaded     bool
	degraded   bool
	memoryOnly bool
}

// New creates a Store on top of backend. An empty key selects DefaultKey.
func New(backend persistence.Backend, key string, logger *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		backend: backend,
		key:     key,
		logger:  logger,
		records: []models.Record{},
	}
}

// Load reads the persisted snapshot. Only the first call has an effect.
// An absent or unreadable snapshot leaves the store empty.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return
	}
	s.loaded = true

	data, err := s.backend.Load(ctx, s.key)
	if errors.Is(err, persistence.ErrNotFound) {
		s.logger.Debug("no snapshot persisted yet", zap.String("key", s.key))
		return
	}
	if err != nil {
		s.degraded = true
		s.memoryOnly = true
		s.logger.Warn("snapshot read failed, continuing in memory",
			zap.String("key", s.key),
			zap.Error(err))
		return
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.degraded = true
		s.memoryOnly = true
		s.logger.Warn("snapshot unparsable, starting empty",
			zap.String("key", s.key),
			zap.Error(err))
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	s.records = records

	s.logger.Info("snapshot loaded",
		zap.String("key", s.key),
		zap.Int("records", len(records)))
}

// Append adds record at the tail and persists the snapshot.
func (s *Store) Append(ctx context.Context, record models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	s.persist(ctx)
}

// RemoveAt removes the record at index and persists the snapshot.
func (s *Store) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.records))
	}

	next := make([]models.Record, 0, len(s.records)-1)
	next = append(next, s.records[:index]...)
	next = append(next, s.records[index+1:]...)
	s.records = next
	s.persist(ctx)
	return nil
}

// Records returns a copy of the current sequence.
func (s *Store) Records() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Degraded reports whether the session is not being persisted: the snapshot
// could not be read, or the last write failed.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	if s.memoryOnly {
		s.logger.Debug("snapshot write skipped, store is memory only",
			zap.String("key", s.key),
			zap.Int("records", len(s.records)))
		return
	}

	data, err := json.Marshal(s.records)
	if err == nil {
		err = s.backend.Save(ctx, s.key, data)
	}
	if err != nil {
		s.degraded = true
		s.logger.Warn("snapshot write failed, continuing in memory",
			zap.String("key", s.key),
			zap.Int("records", len(s.records)),
			zap.Error(err))
		return
	}

	s.degraded = false
	s.logger.Debug("snapshot written",
		zap.String("key", s.key),
		zap.Int("records", len(s.records)))
}
