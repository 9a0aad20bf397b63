// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"time"

	"reportcheck/internal/observability"
)

// ParallelProcessor fans documents out to a WorkerPool and reassembles
// results in submission order.
type ParallelProcessor struct {
	workers  int
	process  ProcessFunc
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics.
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
	AvgFileTime    time.Duration `json:"avg_file_time_ms"`
}

// ProgressCallback is called when a file is completed.
type ProgressCallback func(completed, total int, currentFile string)

// NewParallelProcessor creates a processor. workers <= 0 selects a count
// from the available CPUs.
func NewParallelProcessor(workers int, process ProcessFunc, observer *observability.StandardObserver) *ParallelProcessor {
	return &ParallelProcessor{
		workers:  workers,
		process:  process,
		observer: observer,
	}
}

// ProcessFiles processes files without progress reporting.
func (pp *ParallelProcessor) ProcessFiles(ctx context.Context, filePaths []string) ([]*Result, *ProcessingStats) {
	return pp.ProcessFilesWithProgress(ctx, filePaths, nil)
}

// ProcessFilesWithProgress processes files and returns one Result per path,
// in the order the paths were given.
func (pp *ParallelProcessor) ProcessFilesWithProgress(ctx context.Context, filePaths []string, progressCallback ProgressCallback) ([]*Result, *ProcessingStats) {
	start := time.Now()
	finishTiming := pp.observer.StartTiming("parallel_processor", "process_files", "batch")

	jobCount := len(filePaths)
	workers := pp.workers
	if workers <= 0 {
		workers = OptimalWorkerCount(filePaths)
	}
	workers = min(workers, max(jobCount, 1))

	pool := NewWorkerPool(ctx, workers, pp.process, pp.observer)
	pool.Start()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i, filePath := range filePaths {
			job := &Job{Index: i, JobID: fmt.Sprintf("job_%d", i), FilePath: filePath}
			if !pool.Submit(job) {
				return
			}
		}
	}()
	go pool.Stop()

	ordered := make([]*Result, jobCount)
	completed := 0
	totalDuration := time.Duration(0)
	stats := &ProcessingStats{TotalFiles: jobCount, WorkerCount: workers}

	for result := range pool.Results() {
		ordered[result.Index] = result
		completed++
		totalDuration += result.Duration
		if result.Error != nil {
			stats.FailedFiles++
			pp.observer.LogOperation(observability.StandardObservabilityData{
				Component: "parallel_processor",
				Operation: "file_processing",
				FilePath:  result.FilePath,
				Success:   false,
				Error:     result.Error.Error(),
			})
		} else {
			stats.ProcessedFiles++
		}

		if progressCallback != nil {
			progressCallback(completed, jobCount, result.FilePath)
		}
	}

	// Jobs never submitted because the context ended still get a result.
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &Result{Index: i, JobID: fmt.Sprintf("job_%d", i), FilePath: filePaths[i], Error: err}
			stats.FailedFiles++
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgFileTime = totalDuration / time.Duration(max(completed, 1))

	finishTiming(stats.FailedFiles == 0, map[string]interface{}{
		"total_files":     jobCount,
		"processed_files": stats.ProcessedFiles,
		"failed_files":    stats.FailedFiles,
		"worker_count":    workers,
	})

	return ordered, stats
}
