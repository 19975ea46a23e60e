// Package repository defines persistence boundaries for jobs and export
// files, with PostgreSQL and in-memory implementations.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// ErrNotFound is returned when a referenced job or file id does not exist.
var ErrNotFound = errors.New("not found")

// JobRepository stores wiki export jobs.
type JobRepository interface {
	Add(ctx context.Context, job *model.Job) error
	// Get returns the job or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	// Update persists the job's current state; ErrNotFound if the id is unknown.
	Update(ctx context.Context, job *model.Job) error
	// List returns jobs ordered newest-first.
	List(ctx context.Context, limit, offset int) ([]*model.Job, error)
	// Delete removes the job and cascades deletion of its file records.
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRepository stores export file records.
type FileRepository interface {
	Add(ctx context.Context, file *model.ExportFile) error
	// Get returns the file or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.ExportFile, error)
	// ListByJob returns a job's files in creation order.
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*model.ExportFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
