// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"
	"time"

	"reportcheck/internal/document"
	"reportcheck/internal/observability"
	"reportcheck/internal/resilience"
)

// Options tune extraction.
type Options struct {
	// Timeout bounds each extraction attempt; zero disables the deadline.
	Timeout time.Duration
	// MaxRetries is the number of retries after a transient failure.
	MaxRetries int
	// MaxPages caps the pages read from a PDF; zero reads all pages.
	MaxPages int
}

// DefaultOptions returns the extraction defaults.
func DefaultOptions() Options {
	retry := resilience.DefaultRetryConfig()
	return Options{
		Timeout:    retry.AttemptTimeout,
		MaxRetries: retry.MaxRetries,
	}
}

// Extract resolves the provider for filePath and runs it with a
// per-attempt timeout and bounded retry of transient failures.
func Extract(ctx context.Context, router *Router, filePath string, opts Options, observer *observability.StandardObserver) (*document.Document, error) {
	provider, err := router.ProviderFor(filePath)
	if err != nil {
		return nil, err
	}

	finishTiming := observer.StartTiming("extract", provider.Name(), filePath)
	var finishStep func(bool, string)
	if observer != nil && observer.DebugObserver != nil {
		finishStep = observer.DebugObserver.StartStep("extract", provider.Name(), filePath)
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxRetries = max(opts.MaxRetries, 0)
	retry.AttemptTimeout = opts.Timeout
	retry.OnRetry = func(attempt int, err error) {
		observer.Logger().Debug().
			Str("file_path", filePath).
			Int("attempt", attempt).
			Err(err).
			Msg("retrying extraction")
	}

	doc, err := resilience.RetryWithResult(ctx, retry, func(ctx context.Context) (*document.Document, error) {
		return runProvider(ctx, provider, filePath)
	})

	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		if finishStep != nil {
			finishStep(false, err.Error())
		}
		return nil, err
	}

	finishTiming(true, map[string]interface{}{
		"pages":      doc.PageCount(),
		"has_layout": doc.HasLayout,
	})
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("%d pages", doc.PageCount()))
	}
	return doc, nil
}

type extraction struct {
	doc *document.Document
	err error
}

// runProvider runs a provider so a deadline interrupts the wait even when
// the underlying library ignores the context.
func runProvider(ctx context.Context, provider Provider, filePath string) (*document.Document, error) {
	done := make(chan extraction, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- extraction{err: fmt.Errorf("malformed document: %v", r)}
			}
		}()
		doc, err := provider.Extract(ctx, filePath)
		done <- extraction{doc: doc, err: err}
	}()

	select {
	case res := <-done:
		return res.doc, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("extracting %s: %w", filePath, ctx.Err())
	}
}
