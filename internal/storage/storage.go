// Package storage defines the blob storage boundary for generated export
// files, with MinIO, local-filesystem and in-memory implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a storage path has no backing bytes.
var ErrNotFound = errors.New("blob not found")

// BlobStorage stores and retrieves generated export artifacts. Storage paths
// are opaque tokens produced by Store; callers must not parse them.
type BlobStorage interface {
	// Store writes the content and returns its storage path and size.
	Store(ctx context.Context, content []byte, filename string, jobID uuid.UUID) (string, int64, error)
	// Fetch returns the bytes at the path or ErrNotFound.
	Fetch(ctx context.Context, storagePath string) ([]byte, error)
	// Delete removes the bytes at the path. Deleting a missing path is not
	// an error.
	Delete(ctx context.Context, storagePath string) error
	// DownloadURL returns a time-limited retrieval reference for the path.
	DownloadURL(ctx context.Context, storagePath string, expiry time.Duration) (string, error)
}

// objectKey builds the canonical <job-id>/<filename> storage layout.
func objectKey(jobID uuid.UUID, filename string) string {
	return jobID.String() + "/" + filename
}
