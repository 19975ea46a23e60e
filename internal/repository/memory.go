package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// memoryState is shared between the job and file repositories so that
// deleting a job can cascade to its file records, mirroring the database
// foreign key behavior.
type memoryState struct {
	mu    sync.RWMutex
	jobs  map[uuid.UUID]model.Job
	files map[uuid.UUID]model.ExportFile
}

// NewMemory creates a paired in-memory job and file repository backed by the
// same state.
func NewMemory() (*MemoryJobRepository, *MemoryFileRepository) {
	state := &memoryState{
		jobs:  make(map[uuid.UUID]model.Job),
		files: make(map[uuid.UUID]model.ExportFile),
	}
	return &MemoryJobRepository{state: state}, &MemoryFileRepository{state: state}
}

// MemoryJobRepository is a map-backed JobRepository.
type MemoryJobRepository struct {
	state *memoryState
}

// Add stores a copy of the job.
func (r *MemoryJobRepository) Add(_ context.Context, job *model.Job) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.jobs[job.ID] = *job
	return nil
}

// Get returns a copy of the job or ErrNotFound.
func (r *MemoryJobRepository) Get(_ context.Context, id uuid.UUID) (*model.Job, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	job, ok := r.state.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return &job, nil
}

// Update overwrites the stored job.
func (r *MemoryJobRepository) Update(_ context.Context, job *model.Job) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	r.state.jobs[job.ID] = *job
	return nil
}

// List returns jobs ordered newest-first.
func (r *MemoryJobRepository) List(_ context.Context, limit, offset int) ([]*model.Job, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	all := make([]*model.Job, 0, len(r.state.jobs))
	for id := range r.state.jobs {
		job := r.state.jobs[id]
		all = append(all, &job)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Delete removes the job and cascades to its file records.
func (r *MemoryJobRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.jobs[id]; !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	delete(r.state.jobs, id)
	for fileID, f := range r.state.files {
		if f.JobID == id {
			delete(r.state.files, fileID)
		}
	}
	return nil
}

// MemoryFileRepository is a map-backed FileRepository.
type MemoryFileRepository struct {
	state *memoryState
}

// Add stores a copy of the file record.
func (r *MemoryFileRepository) Add(_ context.Context, file *model.ExportFile) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.files[file.ID] = *file
	return nil
}

// Get returns a copy of the file record or ErrNotFound.
func (r *MemoryFileRepository) Get(_ context.Context, id uuid.UUID) (*model.ExportFile, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	f, ok := r.state.files[id]
	if !ok {
		return nil, fmt.Errorf("export file %s: %w", id, ErrNotFound)
	}
	return &f, nil
}

// ListByJob returns a job's files in creation order.
func (r *MemoryFileRepository) ListByJob(_ context.Context, jobID uuid.UUID) ([]*model.ExportFile, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	var files []*model.ExportFile
	for id := range r.state.files {
		if r.state.files[id].JobID == jobID {
			f := r.state.files[id]
			files = append(files, &f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.Before(files[j].CreatedAt) })
	return files, nil
}

// Delete removes a file record.
func (r *MemoryFileRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.files[id]; !ok {
		return fmt.Errorf("export file %s: %w", id, ErrNotFound)
	}
	delete(r.state.files, id)
	return nil
}
