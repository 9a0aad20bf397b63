// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scoring combines the layout, structure, table-of-contents and
// watermark findings into a 0-100 score with itemized errors and warnings.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"reportcheck/internal/document"
	"reportcheck/internal/rules"
	"reportcheck/internal/structure"
)

// formattingTerms mark warnings that cost formatting points.
var formattingTerms = []string{"format", "margin", "spacing"}

const formattingPenalty = 2.0

// Input gathers everything the scorer needs for one document.
type Input struct {
	FileName  string
	HasLayout bool
	Pages     []document.AnalyzedPage
	// LayoutWarnings are document-level layout notices.
	LayoutWarnings []string
	Structure      *structure.Result
	TOC            *document.TOCValidation
	TOCWarnings    []string
	Watermark      *document.WatermarkInfo
}

// Scorer computes the final ValidationResult.
type Scorer struct {
	rules *rules.RuleSet
}

// NewScorer creates a scorer for rs.
func NewScorer(rs *rules.RuleSet) *Scorer {
	return &Scorer{rules: rs}
}

// Score builds the result. The score is clamped to [0,100] and rounded.
func (s *Scorer) Score(in Input) *document.ValidationResult {
	w := s.rules.Weights
	pageCount := len(in.Pages)
	res := &document.ValidationResult{
		Errors:         []string{},
		Warnings:       []string{},
		StructureFlags: document.NewStructureFlags(),
		TOC:            in.TOC,
		Watermark:      in.Watermark,
		Pages:          in.Pages,
		PageCount:      pageCount,
		HasLayout:      in.HasLayout,
		FileName:       in.FileName,
	}

	st := in.Structure
	if st == nil {
		st = &structure.Result{}
	}
	for k, v := range st.Flags {
		res.StructureFlags[k] = v
	}
	res.Sections = st.Sections
	res.Errors = append(res.Errors, st.SectionErrors...)
	res.Warnings = append(res.Warnings, st.SectionWarnings...)

	for _, p := range in.Pages {
		for _, issue := range p.LayoutIssues {
			msg := fmt.Sprintf("Page %d: %s", issue.PageIndex, issue.Message)
			if issue.Severity == document.SeverityError {
				res.Errors = append(res.Errors, msg)
			} else {
				res.Warnings = append(res.Warnings, msg)
			}
		}
		res.Warnings = append(res.Warnings, p.Warnings...)
	}
	res.Warnings = append(res.Warnings, in.LayoutWarnings...)

	res.Errors = append(res.Errors, st.ChapterErrors...)
	res.Warnings = append(res.Warnings, st.ChapterWarnings...)
	res.Warnings = append(res.Warnings, in.TOCWarnings...)

	var b document.ScoreBreakdown
	b.Watermark = s.scoreWatermark(in.Watermark, res)
	b.PageCount = s.scorePageCount(pageCount, res)
	b.Structure = StructureScore(st.Failures, s.rules.RequiredSectionCount(), w.Structure)
	b.Layout = LayoutScore(in.Pages, s.rules.Layout.PagesChecked, w.Layout)
	b.Formatting = FormattingScore(res.Warnings, w.Formatting)

	res.Breakdown = b
	res.Score = clamp(int(math.Round(b.Total())))
	return res
}

func (s *Scorer) scorePageCount(pageCount int, res *document.ValidationResult) float64 {
	weight := s.rules.Weights.PageCount
	limits := s.rules.Pages
	switch {
	case pageCount < limits.Minimum:
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Document is too short. %d pages found, minimum %d required.", pageCount, limits.Minimum))
		return 0
	case pageCount < limits.Recommended:
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Document has %d pages; at least %d recommended.", pageCount, limits.Recommended))
		return weight / 2
	default:
		return weight
	}
}

func (s *Scorer) scoreWatermark(info *document.WatermarkInfo, res *document.ValidationResult) float64 {
	if info == nil {
		return 0
	}
	weight := s.rules.Weights.Watermark
	score := weight
	if !info.Present {
		res.Warnings = append(res.Warnings, "No watermark detected in the document")
		score -= weight / 2
	}
	if v := info.IdentifierValidation; v != nil && !v.IsValid && v.DetectedValue != "" {
		res.Errors = append(res.Errors, "RRN Validation Failed: "+v.Message)
		score -= weight / 2
	}
	return math.Max(0, score)
}

// StructureScore deducts weight in proportion to unmatched required sections.
func StructureScore(failures, required int, weight float64) float64 {
	if required <= 0 {
		return weight
	}
	return math.Max(0, 1-float64(failures)/float64(required)) * weight
}

// LayoutScore counts pages within the first pagesChecked that carry an
// ERROR issue. The first quarter of such pages is free; beyond that the
// penalty doubles.
func LayoutScore(pages []document.AnalyzedPage, pagesChecked int, weight float64) float64 {
	checked := min(len(pages), pagesChecked)
	if checked == 0 {
		return weight
	}
	withErrors := 0
	for _, p := range pages[:checked] {
		if p.HasErrors() {
			withErrors++
		}
	}
	excess := math.Max(0, float64(withErrors)/float64(checked)-0.25)
	return math.Max(0, 1-2*excess) * weight
}

// FormattingScore deducts two points per formatting-related warning.
func FormattingScore(warnings []string, weight float64) float64 {
	count := 0
	for _, w := range warnings {
		lower := strings.ToLower(w)
		for _, term := range formattingTerms {
			if strings.Contains(lower, term) {
				count++
				break
			}
		}
	}
	return math.Max(0, weight-formattingPenalty*float64(count))
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
