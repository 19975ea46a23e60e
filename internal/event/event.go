// Package event defines the closed set of domain events emitted on job
// state transitions and the publisher boundary they are handed to.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// Type tags one of the event variants. The set is closed: every event the
// system can emit is declared in this package.
type Type string

const (
	TypeJobCreated         Type = "JobCreated"
	TypeJobStarted         Type = "JobStarted"
	TypeJobProgressUpdated Type = "JobProgressUpdated"
	TypeJobCompleted       Type = "JobCompleted"
	TypeJobFailed          Type = "JobFailed"
	TypeJobDeleted         Type = "JobDeleted"
	TypeFileCreated        Type = "FileCreated"
	TypeFileDeleted        Type = "FileDeleted"
)

// Event is a typed, timestamped, immutable fact keyed to a job id.
type Event interface {
	EventType() Type
	Aggregate() uuid.UUID
	OccurredAt() time.Time
}

// Publisher hands events to an external delivery mechanism. Delivery
// guarantees are the publisher's concern; the core fires and forgets.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Base carries the fields common to every event variant.
type Base struct {
	ID          uuid.UUID `json:"id"`
	AggregateID uuid.UUID `json:"aggregate_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func newBase(aggregateID uuid.UUID, at time.Time) Base {
	return Base{ID: uuid.New(), AggregateID: aggregateID, Timestamp: at.UTC()}
}

// Aggregate returns the job id the event is keyed to.
func (b Base) Aggregate() uuid.UUID { return b.AggregateID }

// OccurredAt returns when the fact was recorded.
func (b Base) OccurredAt() time.Time { return b.Timestamp }

// JobCreated is emitted when a new export job is created.
type JobCreated struct {
	Base
	RepositoryURL string `json:"repository_url"`
}

func (JobCreated) EventType() Type { return TypeJobCreated }

// NewJobCreated builds a JobCreated event.
func NewJobCreated(jobID uuid.UUID, at time.Time, repositoryURL string) JobCreated {
	return JobCreated{Base: newBase(jobID, at), RepositoryURL: repositoryURL}
}

// JobStarted is emitted when job processing begins.
type JobStarted struct {
	Base
}

func (JobStarted) EventType() Type { return TypeJobStarted }

// NewJobStarted builds a JobStarted event.
func NewJobStarted(jobID uuid.UUID, at time.Time) JobStarted {
	return JobStarted{Base: newBase(jobID, at)}
}

// JobProgressUpdated is emitted on every progress checkpoint.
type JobProgressUpdated struct {
	Base
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

func (JobProgressUpdated) EventType() Type { return TypeJobProgressUpdated }

// NewJobProgressUpdated builds a JobProgressUpdated event.
func NewJobProgressUpdated(jobID uuid.UUID, at time.Time, percentage int, message string) JobProgressUpdated {
	return JobProgressUpdated{Base: newBase(jobID, at), Percentage: percentage, Message: message}
}

// JobCompleted is emitted when a job finishes successfully.
type JobCompleted struct {
	Base
}

func (JobCompleted) EventType() Type { return TypeJobCompleted }

// NewJobCompleted builds a JobCompleted event.
func NewJobCompleted(jobID uuid.UUID, at time.Time) JobCompleted {
	return JobCompleted{Base: newBase(jobID, at)}
}

// JobFailed is emitted when a job transitions to failed.
type JobFailed struct {
	Base
	ErrorMessage string `json:"error_message"`
}

func (JobFailed) EventType() Type { return TypeJobFailed }

// NewJobFailed builds a JobFailed event.
func NewJobFailed(jobID uuid.UUID, at time.Time, errorMessage string) JobFailed {
	return JobFailed{Base: newBase(jobID, at), ErrorMessage: errorMessage}
}

// JobDeleted is emitted when a job and its artifacts are removed.
type JobDeleted struct {
	Base
}

func (JobDeleted) EventType() Type { return TypeJobDeleted }

// NewJobDeleted builds a JobDeleted event.
func NewJobDeleted(jobID uuid.UUID, at time.Time) JobDeleted {
	return JobDeleted{Base: newBase(jobID, at)}
}

// FileCreated is emitted after a renderer stores an artifact.
type FileCreated struct {
	Base
	FileID      uuid.UUID        `json:"file_id"`
	Format      model.FileFormat `json:"format"`
	Filename    string           `json:"filename"`
	StoragePath string           `json:"storage_path"`
	SizeBytes   int64            `json:"size_bytes"`
}

func (FileCreated) EventType() Type { return TypeFileCreated }

// NewFileCreated builds a FileCreated event from an export file record.
func NewFileCreated(f *model.ExportFile) FileCreated {
	return FileCreated{
		Base:        newBase(f.JobID, f.CreatedAt),
		FileID:      f.ID,
		Format:      f.Format,
		Filename:    f.Filename,
		StoragePath: f.StoragePath,
		SizeBytes:   f.SizeBytes,
	}
}

// FileDeleted is emitted when an export file is removed.
type FileDeleted struct {
	Base
	FileID   uuid.UUID        `json:"file_id"`
	Format   model.FileFormat `json:"format"`
	Filename string           `json:"filename"`
}

func (FileDeleted) EventType() Type { return TypeFileDeleted }

// NewFileDeleted builds a FileDeleted event carrying format and filename
// for observability.
func NewFileDeleted(jobID, fileID uuid.UUID, format model.FileFormat, filename string) FileDeleted {
	return FileDeleted{Base: newBase(jobID, time.Now()), FileID: fileID, Format: format, Filename: filename}
}

// Encode serializes an event to JSON with an event_type discriminator field,
// the wire form consumed by external subscribers.
func Encode(e Event) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType(), err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to re-read %s event: %w", e.EventType(), err)
	}
	fields["event_type"] = string(e.EventType())
	return json.Marshal(fields)
}
