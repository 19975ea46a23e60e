// Package model defines the domain entities for wiki export jobs.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a wiki export job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// CompletedMessage is the progress message recorded when a job finishes successfully.
const CompletedMessage = "Export completed successfully"

var (
	// ErrInvalidTransition is returned when a status change violates the
	// pending -> processing -> {completed, failed} path.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrProgressRegression is returned when a progress update would move
	// the percentage backwards during processing.
	ErrProgressRegression = errors.New("progress percentage cannot decrease")
)

// Job represents one repository's export request and its lifecycle state.
type Job struct {
	ID                 uuid.UUID  `json:"id"`
	RepositoryURL      string     `json:"repository_url"`
	Status             JobStatus  `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	ProgressPercentage int        `json:"progress_percentage"`
	ProgressMessage    string     `json:"progress_message"`
}

// NewJob creates a job in the pending state.
func NewJob(repositoryURL string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:            uuid.New(),
		RepositoryURL: repositoryURL,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// StartProcessing transitions the job from pending to processing.
func (j *Job) StartProcessing() error {
	if j.Status != StatusPending {
		return fmt.Errorf("cannot start job in status %q: %w", j.Status, ErrInvalidTransition)
	}
	j.Status = StatusProcessing
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateProgress records a progress checkpoint. The percentage must stay in
// range and, once the job is processing, must never decrease.
func (j *Job) UpdateProgress(percentage int, message string) error {
	if j.Terminal() {
		return fmt.Errorf("cannot update progress of %s job: %w", j.Status, ErrInvalidTransition)
	}
	if percentage < 0 || percentage > 100 {
		return fmt.Errorf("progress percentage %d out of range [0, 100]", percentage)
	}
	if j.Status == StatusProcessing && percentage < j.ProgressPercentage {
		return fmt.Errorf("progress %d -> %d: %w", j.ProgressPercentage, percentage, ErrProgressRegression)
	}
	j.ProgressPercentage = percentage
	j.ProgressMessage = message
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the job from processing to completed.
func (j *Job) Complete() error {
	if j.Status != StatusProcessing {
		return fmt.Errorf("cannot complete job in status %q: %w", j.Status, ErrInvalidTransition)
	}
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.ProgressPercentage = 100
	j.ProgressMessage = CompletedMessage
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Fail transitions the job to failed and records the error. Failing an
// already-terminal job is rejected so a completed job can never be corrupted.
func (j *Job) Fail(errorMessage string) error {
	if j.Terminal() {
		return fmt.Errorf("cannot fail job in status %q: %w", j.Status, ErrInvalidTransition)
	}
	j.Status = StatusFailed
	j.ErrorMessage = errorMessage
	j.UpdatedAt = time.Now().UTC()
	return nil
}
