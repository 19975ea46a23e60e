package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/wiki-exporter/internal/model"
	"github.com/jonathan/wiki-exporter/internal/repository"
)

// CreateJobRequest is the body for POST /api/jobs.
type CreateJobRequest struct {
	RepositoryURL string `json:"repository_url" validate:"required,url"`
}

// JobResponse is the wire form of a job.
type JobResponse struct {
	ID                 string `json:"id"`
	RepositoryURL      string `json:"repository_url"`
	Status             string `json:"status"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
	CompletedAt        string `json:"completed_at,omitempty"`
	ErrorMessage       string `json:"error_message,omitempty"`
	ProgressPercentage int    `json:"progress_percentage"`
	ProgressMessage    string `json:"progress_message"`
}

// FileResponse is the wire form of an export file.
type FileResponse struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id"`
	Format    string `json:"format"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

func jobResponse(job *model.Job) JobResponse {
	resp := JobResponse{
		ID:                 job.ID.String(),
		RepositoryURL:      job.RepositoryURL,
		Status:             string(job.Status),
		CreatedAt:          job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          job.UpdatedAt.Format(time.RFC3339),
		ErrorMessage:       job.ErrorMessage,
		ProgressPercentage: job.ProgressPercentage,
		ProgressMessage:    job.ProgressMessage,
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

func fileResponse(f *model.ExportFile) FileResponse {
	return FileResponse{
		ID:        f.ID.String(),
		JobID:     f.JobID.String(),
		Format:    string(f.Format),
		Filename:  f.Filename,
		SizeBytes: f.SizeBytes,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
}

// handleCreateJob accepts an export request and dispatches its pipeline.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "repository_url must be a valid URL")
		return
	}

	jobID, err := s.service.Create(r.Context(), req.RepositoryURL)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.dispatcher.Dispatch(jobID)

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"id":     jobID.String(),
		"status": string(model.StatusPending),
	})
}

// handleListJobs returns jobs newest-first with limit/offset paging.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	list, err := s.service.ListJobs(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]JobResponse, 0, len(list))
	for _, job := range list {
		resp = append(resp, jobResponse(job))
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	job, err := s.service.GetJob(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobResponse(job))
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	files, err := s.service.ListFiles(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	resp := make([]FileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, fileResponse(f))
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDownloadFile streams the stored artifact bytes.
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	file, data, err := s.service.FetchFileContent(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).WithField("file_id", id).Warn("failed to stream file")
	}
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.service.DeleteFile(r.Context(), id); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} path segment as a UUID.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}

// serviceError maps command/query errors onto HTTP status codes.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		s.errorResponse(w, http.StatusConflict, err.Error())
	default:
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
