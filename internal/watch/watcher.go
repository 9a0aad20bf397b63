// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watch validates documents as they are written into a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"reportcheck/internal/core"
	"reportcheck/internal/document"
	"reportcheck/internal/observability"
)

// DefaultDebounce is how long a file must stay quiet before it is validated.
// Editors and exporters usually write a document in several chunks.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the report for each validated document.
type Handler func(report document.DocumentReport)

// Watcher validates supported documents created or modified in a directory.
type Watcher struct {
	dir       string
	processor *core.Processor
	observer  *observability.StandardObserver
	debounce  time.Duration
	fsw       *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New starts watching dir. Events are not delivered until Run is called.
func New(dir string, processor *core.Processor, debounce time.Duration, observer *observability.StandardObserver) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		processor: processor,
		observer:  observer,
		debounce:  debounce,
		fsw:       fsw,
		pending:   make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}, nil
}

// Run delivers a report to handle for every document that settles after a
// create or write event. Documents are validated one at a time in the
// order they settle. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.Close()
	ready := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event, ready)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.observer.Logger().Warn().Err(err).Str("dir", w.dir).Msg("watch error")

		case path := <-ready:
			handle(w.validate(ctx, path))
		}
	}
}

// handleEvent (re)arms the debounce timer for supported documents.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event, ready chan<- string) {
	path := event.Name
	if !w.processor.Router().Supports(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if t, ok := w.pending[path]; ok {
			if t.Stop() {
				w.wg.Done()
			}
			delete(w.pending, path)
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.arm(ctx, path, ready)
}

// arm restarts the quiet period for path. A timer that already fired is
// replaced, and its callback sees it is stale and drops the path, so one
// burst of writes yields one validation. The caller holds w.mu.
func (w *Watcher) arm(ctx context.Context, path string, ready chan<- string) {
	select {
	case <-w.done:
		return
	default:
	}
	if t, ok := w.pending[path]; ok && t.Reset(w.debounce) {
		return
	}

	var t *time.Timer
	w.wg.Add(1)
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		current := w.pending[path] == t
		if current {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if !current {
			return
		}

		select {
		case ready <- path:
		case <-ctx.Done():
		case <-w.done:
		}
	})
	w.pending[path] = t
}

func (w *Watcher) validate(ctx context.Context, path string) document.DocumentReport {
	finish := w.observer.StartTiming("watch", "validate", path)
	start := time.Now()
	result, err := w.processor.ValidateFile(ctx, path)
	report := core.ReportFor(path, result, err, time.Since(start))
	finish(err == nil, map[string]interface{}{"status": string(report.Status)})
	return report
}

// Close stops watching and waits for pending timers to give up their
// documents.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for path, t := range w.pending {
			if t.Stop() {
				w.wg.Done()
			}
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.wg.Wait()
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return filepath.Clean(w.dir)
}
