package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps blobs in a map. Used in tests and one-shot runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Store keeps a copy of the content under <job-id>/<filename>.
func (s *MemoryStorage) Store(_ context.Context, content []byte, filename string, jobID uuid.UUID) (string, int64, error) {
	key := objectKey(jobID, filename)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), content...)
	return key, int64(len(content)), nil
}

// Fetch returns a copy of the stored bytes.
func (s *MemoryStorage) Fetch(_ context.Context, storagePath string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.blobs[storagePath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", storagePath, ErrNotFound)
	}
	return append([]byte(nil), content...), nil
}

// Delete removes the blob if present.
func (s *MemoryStorage) Delete(_ context.Context, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, storagePath)
	return nil
}

// DownloadURL returns a synthetic reference; memory blobs have no real URL.
func (s *MemoryStorage) DownloadURL(_ context.Context, storagePath string, _ time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.blobs[storagePath]; !ok {
		return "", fmt.Errorf("%s: %w", storagePath, ErrNotFound)
	}
	return "memory://" + storagePath, nil
}

// Len returns the number of stored blobs.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
