// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"os"
	"runtime"
)

// ResourceLimits bounds automatic worker sizing.
type ResourceLimits struct {
	MaxWorkers    int   `json:"max_workers"`
	MinWorkers    int   `json:"min_workers"`
	LargeFileSize int64 `json:"large_file_size"` // bytes; documents above this average halve the pool
	HeapThreshold uint64
}

// DefaultResourceLimits returns the limits used for automatic sizing.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		MaxWorkers:    8,
		MinWorkers:    1,
		LargeFileSize: 50 * 1024 * 1024,
		HeapThreshold: 1024 * 1024 * 1024,
	}
}

// OptimalWorkerCount picks a worker count for filePaths using the default limits.
func OptimalWorkerCount(filePaths []string) int {
	return DefaultResourceLimits().WorkerCount(len(filePaths), averageFileSize(filePaths), heapInUse())
}

// WorkerCount sizes the pool from CPU count, document size and heap usage.
// PDF extraction holds whole documents in memory, so large inputs or a
// busy heap reduce parallelism.
func (l ResourceLimits) WorkerCount(fileCount int, avgFileSize int64, heap uint64) int {
	workers := runtime.NumCPU()

	if avgFileSize > l.LargeFileSize {
		workers /= 2
	}
	if l.HeapThreshold > 0 && heap > l.HeapThreshold {
		workers /= 2
	}
	if fileCount > 0 {
		workers = min(workers, fileCount)
	}

	return max(l.MinWorkers, min(workers, l.MaxWorkers))
}

func averageFileSize(filePaths []string) int64 {
	var total int64
	counted := 0
	for _, p := range filePaths {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / int64(counted)
}

func heapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapInuse
}
