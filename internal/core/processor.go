// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"reportcheck/internal/document"
	"reportcheck/internal/observability"
	"reportcheck/internal/parallel"
	"reportcheck/internal/preprocessors"
	"reportcheck/internal/rules"
)

// ProcessorConfig holds configuration for batch processing.
type ProcessorConfig struct {
	// Workers is the number of documents validated concurrently. One runs
	// the batch sequentially; zero or less sizes the pool automatically.
	Workers int
	// Recursive descends into subdirectories of directory arguments.
	Recursive  bool
	Extraction preprocessors.Options
	// Progress, when set, is called after each document completes.
	Progress parallel.ProgressCallback
}

// Processor extracts and validates batches of documents.
type Processor struct {
	pipeline *Pipeline
	router   *preprocessors.Router
	config   ProcessorConfig
	observer *observability.StandardObserver
}

// NewProcessor creates a batch processor. A nil router selects the
// default PDF, DOCX and page-dump providers.
func NewProcessor(pipeline *Pipeline, router *preprocessors.Router, config ProcessorConfig, observer *observability.StandardObserver) *Processor {
	if router == nil {
		router = preprocessors.NewDefaultRouter(config.Extraction)
	}
	return &Processor{
		pipeline: pipeline,
		router:   router,
		config:   config,
		observer: observer,
	}
}

// Router returns the provider router used for extraction.
func (p *Processor) Router() *preprocessors.Router {
	return p.router
}

// Rules returns the rule set documents are validated against.
func (p *Processor) Rules() *rules.RuleSet {
	return p.pipeline.Rules()
}

// ValidateFile extracts and validates a single document.
func (p *Processor) ValidateFile(ctx context.Context, path string) (*document.ValidationResult, error) {
	doc, err := preprocessors.Extract(ctx, p.router, path, p.config.Extraction, p.observer)
	if err != nil {
		return nil, err
	}
	return p.pipeline.Validate(ctx, doc)
}

// ProcessFiles validates every document named by paths. Directories are
// expanded to the supported documents they contain. Reports come back in
// input order; a document that cannot be extracted yields an error report
// and does not stop the batch.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) ([]document.DocumentReport, document.BatchSummary) {
	files := p.ExpandPaths(paths)

	pp := parallel.NewParallelProcessor(p.config.Workers, p.ValidateFile, p.observer)
	results, _ := pp.ProcessFilesWithProgress(ctx, files, p.config.Progress)

	reports := make([]document.DocumentReport, len(results))
	for i, r := range results {
		reports[i] = ReportFor(r.FilePath, r.Validation, r.Error, r.Duration)
	}

	summary := document.Summarize(reports)
	summary.BatchID = uuid.NewString()
	return reports, summary
}

// ReportFor converts one outcome into a batch entry.
func ReportFor(path string, result *document.ValidationResult, err error, duration time.Duration) document.DocumentReport {
	report := document.DocumentReport{
		FileName: filepath.Base(path),
		Path:     path,
		Duration: duration,
	}
	if err != nil {
		report.Status = document.StatusError
		report.Error = "Analysis failed: " + err.Error()
		return report
	}
	report.Status = document.StatusCompleted
	report.Result = result
	return report
}

// ExpandPaths replaces directories with the supported documents inside
// them, sorted by path. Other paths are kept as given so a missing or
// unsupported file still produces a report.
func (p *Processor) ExpandPaths(paths []string) []string {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}
		files = append(files, p.scanDir(path)...)
	}
	return files
}

func (p *Processor) scanDir(root string) []string {
	var found []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && !p.config.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if p.router.Supports(path) {
			found = append(found, path)
		}
		return nil
	})
	sort.Strings(found)
	return found
}
