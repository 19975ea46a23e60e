// Package worker dispatches export pipeline runs in the background with a
// bounded concurrency cap. It is the in-process replacement for an external
// task queue: it never schedules the same invocation twice, but callers are
// responsible for not dispatching one job concurrently.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/wiki-exporter/internal/jobs"
	"github.com/jonathan/wiki-exporter/internal/pipeline"
)

// Dispatcher runs job pipelines on background goroutines.
type Dispatcher struct {
	service   *jobs.Service
	processor *pipeline.Processor
	sem       *semaphore.Weighted
	log       *logrus.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher allowing up to maxConcurrent runs.
func NewDispatcher(service *jobs.Service, processor *pipeline.Processor, maxConcurrent int64, log *logrus.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		service:   service,
		processor: processor,
		sem:       semaphore.NewWeighted(maxConcurrent),
		log:       log,
	}
}

// Dispatch schedules one pipeline run for the job and returns immediately.
func (d *Dispatcher) Dispatch(jobID uuid.UUID) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runJob(jobID)
	}()
}

// Wait blocks until all dispatched runs have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) runJob(jobID uuid.UUID) {
	ctx := context.Background()
	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.log.WithError(err).WithField("job_id", jobID).Error("failed to acquire worker slot")
		return
	}
	defer d.sem.Release(1)

	// A panicking run must still leave the job in a terminal state.
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("job_id", jobID).Errorf("pipeline run panicked: %v", r)
			if err := d.service.Fail(ctx, jobID, fmt.Sprintf("internal error: %v", r)); err != nil {
				d.log.WithError(err).WithField("job_id", jobID).Error("failed to mark panicked job as failed")
			}
		}
	}()

	if err := d.service.Start(ctx, jobID); err != nil {
		d.log.WithError(err).WithField("job_id", jobID).Error("failed to start job")
		if failErr := d.service.Fail(ctx, jobID, err.Error()); failErr != nil {
			d.log.WithError(failErr).WithField("job_id", jobID).Error("failed to mark job as failed")
		}
		return
	}

	// The processor records and publishes the failure itself; the error
	// here is only for the worker log.
	if err := d.processor.ProcessJob(ctx, jobID); err != nil {
		d.log.WithError(err).WithField("job_id", jobID).Error("pipeline run failed")
	}
}
