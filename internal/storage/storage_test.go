package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	jobID := uuid.New()

	path, size, err := s.Store(ctx, []byte("hello"), "repo_wiki.md", jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID.String()+"/repo_wiki.md", path)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, 1, s.Len())

	content, err := s.Fetch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)

	url, err := s.DownloadURL(ctx, path, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://"+path, url)

	require.NoError(t, s.Delete(ctx, path))
	assert.Equal(t, 0, s.Len())
	_, err = s.Fetch(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing path is not an error.
	assert.NoError(t, s.Delete(ctx, path))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	jobID := uuid.New()

	path, size, err := s.Store(ctx, []byte("# Wiki\n"), "repo_wiki.md", jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID.String()+"/repo_wiki.md", path)
	assert.Equal(t, int64(7), size)

	content, err := s.Fetch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("# Wiki\n"), content)

	url, err := s.DownloadURL(ctx, path, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "file://")
	assert.Contains(t, url, filepath.FromSlash("repo_wiki.md"))

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Fetch(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, path))
}
