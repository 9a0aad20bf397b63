// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcheck/internal/document"
	"reportcheck/internal/observability"
)

// scoreByName derives a score from the file name and sleeps inversely to
// it so later files tend to finish first.
func scoreByName(ctx context.Context, path string) (*document.ValidationResult, error) {
	if strings.HasPrefix(path, "bad") {
		return nil, errors.New("unreadable")
	}
	var n int
	_, _ = fmt.Sscanf(path, "doc%d.pdf", &n)
	time.Sleep(time.Duration(10-n) * time.Millisecond)
	return &document.ValidationResult{Score: n * 10, FileName: path}, nil
}

func TestProcessFilesKeepsSubmissionOrder(t *testing.T) {
	paths := []string{"doc1.pdf", "doc2.pdf", "bad.pdf", "doc3.pdf", "doc9.pdf"}
	pp := NewParallelProcessor(4, scoreByName, observability.Nop())

	var mu sync.Mutex
	var progress []int
	results, stats := pp.ProcessFilesWithProgress(context.Background(), paths, func(completed, total int, file string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(paths), total)
		progress = append(progress, completed)
	})

	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, paths[i], r.FilePath)
	}
	assert.Equal(t, 10, results[0].Validation.Score)
	assert.Equal(t, 90, results[4].Validation.Score)
	assert.EqualError(t, results[2].Error, "unreadable")
	assert.Nil(t, results[2].Validation)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	assert.Equal(t, 5, stats.TotalFiles)
	assert.Equal(t, 4, stats.ProcessedFiles)
	assert.Equal(t, 1, stats.FailedFiles)
	assert.Equal(t, 4, stats.WorkerCount)
}

func TestSequentialMatchesParallel(t *testing.T) {
	paths := []string{"doc4.pdf", "doc2.pdf", "doc7.pdf", "doc1.pdf"}
	seq, _ := NewParallelProcessor(1, scoreByName, nil).ProcessFiles(context.Background(), paths)
	par, _ := NewParallelProcessor(3, scoreByName, nil).ProcessFiles(context.Background(), paths)

	require.Len(t, seq, len(par))
	for i := range seq {
		assert.Equal(t, seq[i].Validation.Score, par[i].Validation.Score)
	}
}

func TestWorkerConcurrencyIsBounded(t *testing.T) {
	var active, peak int32
	process := func(ctx context.Context, path string) (*document.ValidationResult, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return &document.ValidationResult{}, nil
	}

	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("doc%d.pdf", i)
	}
	_, stats := NewParallelProcessor(2, process, nil).ProcessFiles(context.Background(), paths)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, 12, stats.ProcessedFiles)
}

func TestPanicIsIsolated(t *testing.T) {
	process := func(ctx context.Context, path string) (*document.ValidationResult, error) {
		if path == "boom.pdf" {
			panic("corrupt glyph table")
		}
		return &document.ValidationResult{Score: 80}, nil
	}
	results, stats := NewParallelProcessor(2, process, nil).ProcessFiles(context.Background(), []string{"a.pdf", "boom.pdf"})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.ErrorContains(t, results[1].Error, "corrupt glyph table")
	assert.Equal(t, 1, stats.FailedFiles)
}

func TestCancelledContextFailsRemainingJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, stats := NewParallelProcessor(2, scoreByName, nil).ProcessFiles(ctx, []string{"doc1.pdf", "doc2.pdf", "doc3.pdf"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Equal(t, 3, stats.FailedFiles)
}

func TestEmptyBatch(t *testing.T) {
	results, stats := NewParallelProcessor(0, scoreByName, nil).ProcessFiles(context.Background(), nil)
	assert.Empty(t, results)
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestWorkerCount(t *testing.T) {
	limits := DefaultResourceLimits()
	cpus := runtime.NumCPU()

	assert.Equal(t, 1, limits.WorkerCount(1, 0, 0), "never more workers than files")
	assert.Equal(t, max(1, min(cpus, 8)), limits.WorkerCount(100, 1024, 0))
	assert.Equal(t, max(1, min(cpus/2, 8)), limits.WorkerCount(100, limits.LargeFileSize+1, 0))
	assert.Equal(t, max(1, min(cpus/4, 8)), limits.WorkerCount(100, limits.LargeFileSize+1, limits.HeapThreshold+1))
	assert.GreaterOrEqual(t, OptimalWorkerCount([]string{"missing.pdf"}), 1)
}
