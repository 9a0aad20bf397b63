// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcheck/internal/core"
	"reportcheck/internal/document"
	"reportcheck/internal/preprocessors"
	"reportcheck/internal/testutil"
)

func newProcessor() *core.Processor {
	return core.NewProcessor(core.NewPipeline(nil, nil), nil, core.ProcessorConfig{
		Workers:    1,
		Extraction: preprocessors.DefaultOptions(),
	}, nil)
}

func startWatcher(t *testing.T, dir string) <-chan document.DocumentReport {
	t.Helper()
	w, err := New(dir, newProcessor(), 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan document.DocumentReport, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(r document.DocumentReport) { reports <- r })
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return reports
}

func next(t *testing.T, reports <-chan document.DocumentReport) document.DocumentReport {
	t.Helper()
	select {
	case r := <-reports:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no report received")
		return document.DocumentReport{}
	}
}

func TestWatcherValidatesNewDocuments(t *testing.T) {
	dir := t.TempDir()
	reports := startWatcher(t, dir)

	data, err := json.Marshal(testutil.NewReport())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thesis.pages.json"), data, 0o600))

	r := next(t, reports)
	assert.Equal(t, "thesis.pages.json", r.FileName)
	assert.Equal(t, document.StatusCompleted, r.Status)
	require.NotNil(t, r.Result)
	assert.Equal(t, 95, r.Result.Score)

	select {
	case extra := <-reports:
		t.Fatalf("unexpected second report for %s", extra.FileName)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherReportsBrokenDocuments(t *testing.T) {
	dir := t.TempDir()
	reports := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pages.json"), []byte("{not json"), 0o600))

	r := next(t, reports)
	assert.Equal(t, document.StatusError, r.Status)
	assert.Contains(t, r.Error, "Analysis failed: invalid page dump")
}

func TestRearmAfterTimerFired(t *testing.T) {
	w, err := New(t.TempDir(), newProcessor(), 10*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ready := make(chan string, 4)
	path := filepath.Join(w.Dir(), "thesis.pdf")

	// The first timer fires while the lock is held, as it does when a
	// write event arrives at the end of the quiet period.
	w.mu.Lock()
	w.arm(context.Background(), path, ready)
	time.Sleep(50 * time.Millisecond)
	w.arm(context.Background(), path, ready)
	w.mu.Unlock()

	select {
	case got := <-ready:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("document never settled")
	}
	select {
	case <-ready:
		t.Fatal("one burst of writes validated the document twice")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCloseReleasesSettledDocuments(t *testing.T) {
	w, err := New(t.TempDir(), newProcessor(), 5*time.Millisecond, nil)
	require.NoError(t, err)

	// Nobody reads ready, so the fired timer waits until Close.
	ready := make(chan string)
	w.mu.Lock()
	w.arm(context.Background(), filepath.Join(w.Dir(), "a.pdf"), ready)
	w.arm(context.Background(), filepath.Join(w.Dir(), "b.pdf"), ready)
	w.mu.Unlock()
	time.Sleep(50 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close left a timer callback blocked")
	}
	assert.NoError(t, w.Close())

	w.mu.Lock()
	w.arm(context.Background(), filepath.Join(w.Dir(), "c.pdf"), ready)
	assert.Empty(t, w.pending, "a closed watcher arms no timers")
	w.mu.Unlock()
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), newProcessor(), 0, nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.pdf")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = New(file, newProcessor(), 0, nil)
	assert.ErrorContains(t, err, "not a directory")
}
