package model

import (
	"time"

	"github.com/google/uuid"
)

// FileFormat identifies an export output format.
type FileFormat string

const (
	FormatMarkdown FileFormat = "markdown"
	FormatPDF      FileFormat = "pdf"
	FormatEPUB     FileFormat = "epub"
)

// ExportFile represents one rendered artifact belonging to a job.
type ExportFile struct {
	ID          uuid.UUID  `json:"id"`
	JobID       uuid.UUID  `json:"job_id"`
	Format      FileFormat `json:"format"`
	Filename    string     `json:"filename"`
	StoragePath string     `json:"storage_path"`
	SizeBytes   int64      `json:"size_bytes"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewExportFile creates an export file record for a stored artifact.
func NewExportFile(jobID uuid.UUID, format FileFormat, filename, storagePath string, sizeBytes int64) *ExportFile {
	return &ExportFile{
		ID:          uuid.New(),
		JobID:       jobID,
		Format:      format,
		Filename:    filename,
		StoragePath: storagePath,
		SizeBytes:   sizeBytes,
		CreatedAt:   time.Now().UTC(),
	}
}

// WikiPage identifies a single page of a repository wiki.
type WikiPage struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
