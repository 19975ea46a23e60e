package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// Connect establishes a pgx connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables this module needs if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS wiki_jobs (
			id UUID PRIMARY KEY,
			repository_url TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ,
			error_message TEXT,
			progress_percentage INT NOT NULL DEFAULT 0,
			progress_message TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS export_files (
			id UUID PRIMARY KEY,
			job_id UUID NOT NULL REFERENCES wiki_jobs(id) ON DELETE CASCADE,
			format TEXT NOT NULL,
			filename TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_export_files_job_id ON export_files(job_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// PostgresJobRepository is the pgx-backed JobRepository.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository wraps a connection pool.
func NewPostgresJobRepository(pool *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

// Add inserts a new job row.
func (r *PostgresJobRepository) Add(ctx context.Context, job *model.Job) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wiki_jobs (id, repository_url, status, created_at, updated_at, completed_at, error_message, progress_percentage, progress_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID, job.RepositoryURL, job.Status, job.CreatedAt, job.UpdatedAt,
		job.CompletedAt, nullable(job.ErrorMessage), job.ProgressPercentage, job.ProgressMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}
	return nil
}

// Get loads a job by id.
func (r *PostgresJobRepository) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, repository_url, status, created_at, updated_at, completed_at, error_message, progress_percentage, progress_message
		 FROM wiki_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Update writes the job's mutable fields back.
func (r *PostgresJobRepository) Update(ctx context.Context, job *model.Job) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE wiki_jobs
		 SET status = $2, updated_at = $3, completed_at = $4, error_message = $5, progress_percentage = $6, progress_message = $7
		 WHERE id = $1`,
		job.ID, job.Status, job.UpdatedAt, job.CompletedAt,
		nullable(job.ErrorMessage), job.ProgressPercentage, job.ProgressMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	return nil
}

// List returns jobs ordered newest-first.
func (r *PostgresJobRepository) List(ctx context.Context, limit, offset int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, repository_url, status, created_at, updated_at, completed_at, error_message, progress_percentage, progress_message
		 FROM wiki_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Delete removes the job row; export_files rows cascade.
func (r *PostgresJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wiki_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var job model.Job
	var errorMessage *string
	if err := row.Scan(&job.ID, &job.RepositoryURL, &job.Status, &job.CreatedAt, &job.UpdatedAt,
		&job.CompletedAt, &errorMessage, &job.ProgressPercentage, &job.ProgressMessage); err != nil {
		return nil, err
	}
	if errorMessage != nil {
		job.ErrorMessage = *errorMessage
	}
	return &job, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PostgresFileRepository is the pgx-backed FileRepository.
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFileRepository wraps a connection pool.
func NewPostgresFileRepository(pool *pgxpool.Pool) *PostgresFileRepository {
	return &PostgresFileRepository{pool: pool}
}

// Add inserts an export file row.
func (r *PostgresFileRepository) Add(ctx context.Context, file *model.ExportFile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO export_files (id, job_id, format, filename, storage_path, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		file.ID, file.JobID, file.Format, file.Filename, file.StoragePath, file.SizeBytes, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add export file: %w", err)
	}
	return nil
}

// Get loads an export file by id.
func (r *PostgresFileRepository) Get(ctx context.Context, id uuid.UUID) (*model.ExportFile, error) {
	var f model.ExportFile
	err := r.pool.QueryRow(ctx,
		`SELECT id, job_id, format, filename, storage_path, size_bytes, created_at
		 FROM export_files WHERE id = $1`, id,
	).Scan(&f.ID, &f.JobID, &f.Format, &f.Filename, &f.StoragePath, &f.SizeBytes, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("export file %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get export file: %w", err)
	}
	return &f, nil
}

// ListByJob returns a job's files in creation order.
func (r *PostgresFileRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*model.ExportFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, job_id, format, filename, storage_path, size_bytes, created_at
		 FROM export_files WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list export files: %w", err)
	}
	defer rows.Close()

	var files []*model.ExportFile
	for rows.Next() {
		var f model.ExportFile
		if err := rows.Scan(&f.ID, &f.JobID, &f.Format, &f.Filename, &f.StoragePath, &f.SizeBytes, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export file: %w", err)
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// Delete removes an export file row.
func (r *PostgresFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM export_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("export file %s: %w", id, ErrNotFound)
	}
	return nil
}
