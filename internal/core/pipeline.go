// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core wires the analysis stages into a per-document pipeline and
// a batch processor shared by the CLI, the watcher and the web server.
package core

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"reportcheck/internal/document"
	"reportcheck/internal/layout"
	"reportcheck/internal/observability"
	"reportcheck/internal/rules"
	"reportcheck/internal/scoring"
	"reportcheck/internal/structure"
	"reportcheck/internal/watermark"
)

// ErrNoPages is returned for a document without pages. Callers treat it
// as an extraction failure.
var ErrNoPages = errors.New("document has no pages")

// Pipeline validates extracted documents against one rule set. It holds
// no per-document state and is safe for concurrent use.
type Pipeline struct {
	rules     *rules.RuleSet
	layout    *layout.Analyzer
	structure *structure.Validator
	toc       *structure.TOCChecker
	watermark *watermark.Detector
	scorer    *scoring.Scorer
	observer  *observability.StandardObserver
}

// NewPipeline builds the analysis stages for rs. A nil rs selects the
// default internship-report rules.
func NewPipeline(rs *rules.RuleSet, observer *observability.StandardObserver) *Pipeline {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	return &Pipeline{
		rules:     rs,
		layout:    layout.NewAnalyzer(rs),
		structure: structure.NewValidator(rs),
		toc:       structure.NewTOCChecker(rs),
		watermark: watermark.NewDetector(rs),
		scorer:    scoring.NewScorer(rs),
		observer:  observer,
	}
}

// Rules returns the rule set the pipeline validates against.
func (p *Pipeline) Rules() *rules.RuleSet {
	return p.rules
}

// Validate runs layout analysis, then structure, table-of-contents and
// watermark analysis concurrently, and scores the combined findings.
func (p *Pipeline) Validate(ctx context.Context, doc *document.Document) (*document.ValidationResult, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, ErrNoPages
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	finishTiming := p.observer.StartTiming("pipeline", "validate", doc.FileName)

	finishLayout := p.stage("layout", doc.FileName)
	pages, layoutWarnings := p.layout.Analyze(doc)
	finishLayout(map[string]interface{}{"pages": len(pages), "has_layout": doc.HasLayout})

	var (
		structureResult *structure.Result
		toc             *document.TOCValidation
		tocWarnings     []string
		mark            *document.WatermarkInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		finish := p.stage("structure", doc.FileName)
		structureResult = p.structure.Validate(pages)
		finish(map[string]interface{}{"failures": structureResult.Failures})
		return gctx.Err()
	})
	// Degraded documents have no footers or line geometry to map TOC entries with.
	if doc.HasLayout {
		g.Go(func() error {
			finish := p.stage("toc", doc.FileName)
			toc, tocWarnings = p.toc.CrossCheck(pages)
			finish(map[string]interface{}{"found": toc != nil, "warnings": len(tocWarnings)})
			return gctx.Err()
		})
	}
	g.Go(func() error {
		finish := p.stage("watermark", doc.FileName)
		mark = p.watermark.Detect(doc.PageTexts(), len(doc.Pages))
		finish(map[string]interface{}{"present": mark.Present, "confidence": string(mark.Confidence)})
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("validating %s: %w", doc.FileName, err)
	}

	finishScore := p.stage("score", doc.FileName)
	result := p.scorer.Score(scoring.Input{
		FileName:       doc.FileName,
		HasLayout:      doc.HasLayout,
		Pages:          pages,
		LayoutWarnings: layoutWarnings,
		Structure:      structureResult,
		TOC:            toc,
		TOCWarnings:    tocWarnings,
		Watermark:      mark,
	})
	finishScore(map[string]interface{}{"score": result.Score})

	finishTiming(true, map[string]interface{}{
		"score":    result.Score,
		"errors":   len(result.Errors),
		"warnings": len(result.Warnings),
	})
	return result, nil
}

// stage times one pipeline stage and mirrors it to the debug observer.
func (p *Pipeline) stage(name, fileName string) func(map[string]interface{}) {
	finishTiming := p.observer.StartTiming("pipeline", name, fileName)
	var finishStep func(bool, string)
	if p.observer != nil && p.observer.DebugObserver != nil {
		finishStep = p.observer.DebugObserver.StartStep("pipeline", name, fileName)
	}
	return func(meta map[string]interface{}) {
		finishTiming(true, meta)
		if finishStep != nil {
			finishStep(true, fmt.Sprint(meta))
		}
	}
}
