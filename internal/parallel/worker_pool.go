// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reportcheck/internal/document"
	"reportcheck/internal/observability"
)

// ProcessFunc extracts and validates the document at filePath.
type ProcessFunc func(ctx context.Context, filePath string) (*document.ValidationResult, error)

// WorkerPool runs ProcessFunc over submitted jobs with a fixed number of workers.
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	observer *observability.StandardObserver
	process  ProcessFunc
}

// Job represents one document to validate.
type Job struct {
	Index    int
	JobID    string
	FilePath string
}

// Result represents the outcome of one job.
type Result struct {
	Index      int
	JobID      string
	FilePath   string
	Validation *document.ValidationResult
	Error      error
	Duration   time.Duration
}

// NewWorkerPool creates a worker pool bound to ctx. Cancelling ctx stops
// workers after their current job.
func NewWorkerPool(ctx context.Context, workers int, process ProcessFunc, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
		process:  process,
	}
}

// Workers returns the configured worker count.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Start initializes worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Close signals that no more jobs will be submitted.
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Stop waits for workers to drain and releases the pool.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a job to the queue. It returns false when the pool was cancelled.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)
		// Results are always delivered so the collector can account for every submitted job.
		wp.results <- result
	}
}

func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()
	finishTiming := wp.observer.StartTiming("worker_pool", "process_job", job.FilePath)

	var (
		validation *document.ValidationResult
		err        error
	)
	if ctxErr := wp.ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else {
		validation, err = wp.safeProcess(job.FilePath)
	}

	duration := time.Since(start)
	meta := map[string]interface{}{
		"worker_id": workerID,
		"job_id":    job.JobID,
	}
	if validation != nil {
		meta["score"] = validation.Score
	}
	finishTiming(err == nil, meta)

	return &Result{
		Index:      job.Index,
		JobID:      job.JobID,
		FilePath:   job.FilePath,
		Validation: validation,
		Error:      err,
		Duration:   duration,
	}
}

// safeProcess isolates a panicking document so the rest of the batch completes.
func (wp *WorkerPool) safeProcess(filePath string) (validation *document.ValidationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			validation = nil
			err = fmt.Errorf("panic while processing %s: %v", filePath, r)
		}
	}()
	return wp.process(wp.ctx, filePath)
}
