// Package pipeline orchestrates one job's export run: content acquisition,
// rendering in each format, and the terminal state transition.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/wiki-exporter/internal/content"
	"github.com/jonathan/wiki-exporter/internal/event"
	"github.com/jonathan/wiki-exporter/internal/export"
	"github.com/jonathan/wiki-exporter/internal/model"
	"github.com/jonathan/wiki-exporter/internal/repository"
	"github.com/jonathan/wiki-exporter/internal/storage"
)

// renderCheckpoints fixes each renderer's progress percentage and message.
var renderCheckpoints = map[model.FileFormat]struct {
	percentage int
	message    string
}{
	model.FormatMarkdown: {60, "Generating Markdown export"},
	model.FormatPDF:      {70, "Generating PDF export"},
	model.FormatEPUB:     {80, "Generating EPUB export"},
}

// Processor drives the export pipeline for single jobs. Multiple jobs may be
// processed concurrently; each run is an independent sequential pass.
type Processor struct {
	assembler *content.Assembler
	renderers []export.Renderer
	jobs      repository.JobRepository
	files     repository.FileRepository
	storage   storage.BlobStorage
	publisher event.Publisher
	log       *logrus.Logger
}

// Options wires a Processor's collaborators.
type Options struct {
	Source    content.Source
	Renderers []export.Renderer
	Jobs      repository.JobRepository
	Files     repository.FileRepository
	Storage   storage.BlobStorage
	Publisher event.Publisher
	Log       *logrus.Logger
}

// NewProcessor builds a processor. When Renderers is nil the standard
// Markdown, PDF, EPUB sequence is used.
func NewProcessor(opts Options) *Processor {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	renderers := opts.Renderers
	if renderers == nil {
		renderers = []export.Renderer{
			export.MarkdownRenderer{},
			export.PDFRenderer{Log: log},
			export.EPUBRenderer{Log: log},
		}
	}
	return &Processor{
		assembler: content.NewAssembler(opts.Source, log),
		renderers: renderers,
		jobs:      opts.Jobs,
		files:     opts.Files,
		storage:   opts.Storage,
		publisher: opts.Publisher,
		log:       log,
	}
}

// ProcessJob runs the full export for one job. A missing job id is the only
// hard abort; any other failure transitions the job to failed exactly once.
// The returned error reflects why the run failed, after the failure has been
// recorded and published.
func (p *Processor) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := p.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}

	if err := p.run(ctx, job); err != nil {
		p.failJob(ctx, job, err)
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, job *model.Job) error {
	blob, err := p.assembler.Assemble(ctx, job.RepositoryURL, func(ctx context.Context, percentage int, message string) {
		p.updateProgress(ctx, job, percentage, message)
	})
	if err != nil {
		return err
	}

	repoName := export.RepoName(job.RepositoryURL)
	for _, renderer := range p.renderers {
		if cp, ok := renderCheckpoints[renderer.Format()]; ok {
			p.updateProgress(ctx, job, cp.percentage, cp.message)
		}
		if err := p.export(ctx, job, renderer, repoName, blob); err != nil {
			return err
		}
	}

	p.updateProgress(ctx, job, 100, "Export completed")
	if err := job.Complete(); err != nil {
		return err
	}
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	if err := p.publisher.Publish(ctx, event.NewJobCompleted(job.ID, job.UpdatedAt)); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Warn("failed to publish JobCompleted")
	}

	p.log.WithField("job_id", job.ID).Info("export pipeline completed")
	return nil
}

// export runs one renderer and records its artifact. The renderer itself
// never fails; storage or repository errors are fatal for the run.
func (p *Processor) export(ctx context.Context, job *model.Job, renderer export.Renderer, repoName, blob string) error {
	data := renderer.Render(ctx, repoName, blob)
	filename := renderer.Filename(repoName)

	storagePath, size, err := p.storage.Store(ctx, data, filename, job.ID)
	if err != nil {
		return fmt.Errorf("failed to store %s export: %w", renderer.Format(), err)
	}

	file := model.NewExportFile(job.ID, renderer.Format(), filename, storagePath, size)
	if err := p.files.Add(ctx, file); err != nil {
		return fmt.Errorf("failed to record %s export: %w", renderer.Format(), err)
	}
	if err := p.publisher.Publish(ctx, event.NewFileCreated(file)); err != nil {
		p.log.WithError(err).WithField("file_id", file.ID).Warn("failed to publish FileCreated")
	}
	return nil
}

// updateProgress persists a checkpoint and announces it. Checkpoints are
// best-effort; a failed write loses that checkpoint but not the run.
func (p *Processor) updateProgress(ctx context.Context, job *model.Job, percentage int, message string) {
	if err := job.UpdateProgress(percentage, message); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Warn("rejected progress update")
		return
	}
	if err := p.jobs.Update(ctx, job); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Warn("failed to persist progress")
		return
	}
	if err := p.publisher.Publish(ctx, event.NewJobProgressUpdated(job.ID, job.UpdatedAt, percentage, message)); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Warn("failed to publish JobProgressUpdated")
	}
}

// failJob records the terminal failure and publishes JobFailed.
func (p *Processor) failJob(ctx context.Context, job *model.Job, cause error) {
	p.log.WithError(cause).WithField("job_id", job.ID).Error("export pipeline failed")

	if err := job.Fail(cause.Error()); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Error("could not transition job to failed")
		return
	}
	if err := p.jobs.Update(ctx, job); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Error("failed to persist job failure")
	}
	if err := p.publisher.Publish(ctx, event.NewJobFailed(job.ID, job.UpdatedAt, cause.Error())); err != nil {
		p.log.WithError(err).WithField("job_id", job.ID).Warn("failed to publish JobFailed")
	}
}
