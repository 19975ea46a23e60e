package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalStorage writes blobs to a directory on disk. Used by the one-shot
// export command so artifacts land next to the caller.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

// Store writes the content to <root>/<job-id>/<filename>.
func (s *LocalStorage) Store(_ context.Context, content []byte, filename string, jobID uuid.UUID) (string, int64, error) {
	key := objectKey(jobID, filename)
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", full, err)
	}
	return key, int64(len(content)), nil
}

// Fetch reads the blob from disk.
func (s *LocalStorage) Fetch(_ context.Context, storagePath string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(storagePath)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", storagePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", storagePath, err)
	}
	return content, nil
}

// Delete removes the file; a missing file is already deleted.
func (s *LocalStorage) Delete(_ context.Context, storagePath string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(storagePath)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", storagePath, err)
	}
	return nil
}

// DownloadURL returns a file:// reference to the blob.
func (s *LocalStorage) DownloadURL(_ context.Context, storagePath string, _ time.Duration) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.root, filepath.FromSlash(storagePath)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", storagePath, err)
	}
	return "file://" + abs, nil
}
