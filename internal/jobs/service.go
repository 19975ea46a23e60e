// Package jobs exposes the command and query surface over wiki export jobs
// and their files. Each command is read-modify-write-publish.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/wiki-exporter/internal/event"
	"github.com/jonathan/wiki-exporter/internal/model"
	"github.com/jonathan/wiki-exporter/internal/repository"
	"github.com/jonathan/wiki-exporter/internal/storage"
)

// Service implements the job/file commands and queries.
type Service struct {
	jobs      repository.JobRepository
	files     repository.FileRepository
	storage   storage.BlobStorage
	publisher event.Publisher
	log       *logrus.Logger
}

// NewService wires the command/query layer over its collaborators.
func NewService(jobs repository.JobRepository, files repository.FileRepository, blobs storage.BlobStorage, publisher event.Publisher, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{jobs: jobs, files: files, storage: blobs, publisher: publisher, log: log}
}

// Create registers a new pending job for the repository URL and returns its
// id. URL syntax validation belongs to the API boundary, not here.
func (s *Service) Create(ctx context.Context, repositoryURL string) (uuid.UUID, error) {
	job := model.NewJob(repositoryURL)
	if err := s.jobs.Add(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.publish(ctx, event.NewJobCreated(job.ID, job.CreatedAt, job.RepositoryURL))
	return job.ID, nil
}

// Start transitions a pending job to processing.
func (s *Service) Start(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if err := job.StartProcessing(); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}
	s.publish(ctx, event.NewJobStarted(job.ID, job.UpdatedAt))
	return nil
}

// UpdateProgress records a progress checkpoint for a job.
func (s *Service) UpdateProgress(ctx context.Context, jobID uuid.UUID, percentage int, message string) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if err := job.UpdateProgress(percentage, message); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	s.publish(ctx, event.NewJobProgressUpdated(job.ID, job.UpdatedAt, percentage, message))
	return nil
}

// Fail transitions a job to failed with the given error message.
func (s *Service) Fail(ctx context.Context, jobID uuid.UUID, errorMessage string) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if err := job.Fail(errorMessage); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	s.publish(ctx, event.NewJobFailed(job.ID, job.UpdatedAt, errorMessage))
	return nil
}

// Delete removes a job, its file records and, best-effort, the stored blobs.
// Blob deletion errors are logged and never block the job deletion.
func (s *Service) Delete(ctx context.Context, jobID uuid.UUID) error {
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return err
	}

	files, err := s.files.ListByJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to list job files: %w", err)
	}
	for _, f := range files {
		if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
			s.log.WithError(err).WithField("storage_path", f.StoragePath).Warn("failed to delete stored blob")
		}
	}

	// File records cascade with the job row.
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	s.publish(ctx, event.NewJobDeleted(jobID, time.Now()))
	return nil
}

// DeleteFile removes a single export file record and, best-effort, its blob.
func (s *Service) DeleteFile(ctx context.Context, fileID uuid.UUID) error {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		s.log.WithError(err).WithField("storage_path", file.StoragePath).Warn("failed to delete stored blob")
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete export file: %w", err)
	}
	s.publish(ctx, event.NewFileDeleted(file.JobID, file.ID, file.Format, file.Filename))
	return nil
}

// GetJob returns a job by id.
func (s *Service) GetJob(ctx context.Context, jobID uuid.UUID) (*model.Job, error) {
	return s.jobs.Get(ctx, jobID)
}

// ListJobs returns jobs ordered newest-first.
func (s *Service) ListJobs(ctx context.Context, limit, offset int) ([]*model.Job, error) {
	return s.jobs.List(ctx, limit, offset)
}

// GetFile returns an export file record by id.
func (s *Service) GetFile(ctx context.Context, fileID uuid.UUID) (*model.ExportFile, error) {
	return s.files.Get(ctx, fileID)
}

// ListFiles returns a job's export files in creation order.
func (s *Service) ListFiles(ctx context.Context, jobID uuid.UUID) ([]*model.ExportFile, error) {
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return nil, err
	}
	return s.files.ListByJob(ctx, jobID)
}

// FetchFileContent returns an export file record together with its bytes.
func (s *Service) FetchFileContent(ctx context.Context, fileID uuid.UUID) (*model.ExportFile, []byte, error) {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Fetch(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", file.Filename, err)
	}
	return file, data, nil
}

// FileDownloadURL returns a time-limited retrieval reference for a file.
func (s *Service) FileDownloadURL(ctx context.Context, fileID uuid.UUID, expiry time.Duration) (string, error) {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.DownloadURL(ctx, file.StoragePath, expiry)
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WithError(err).WithField("event_type", e.EventType()).Warn("failed to publish event")
	}
}
