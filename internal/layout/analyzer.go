// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package layout checks per-page visual placement: heading position and
// centering, text inside the page border, and paragraph justification.
package layout

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"reportcheck/internal/document"
	"reportcheck/internal/rules"
)

// SkippedWarning is reported once for documents without page geometry.
const SkippedWarning = "Layout validation was skipped for this document: the source document does not provide page geometry."

var (
	chapterHeading = regexp.MustCompile(`(?i)^CHAPTER`)
	capsHeading    = regexp.MustCompile(`^[A-Z\s]{5,}$`)
	headingPrefix  = regexp.MustCompile(`(?i)^(CHAPTER|FIGURE|TABLE|LIST OF|ABSTRACT|ACKNOWLEDGEMENT|BONAFIDE|CERTIFICATE|CONCLUSION|REFERENCE)`)
	numberedItem   = regexp.MustCompile(`^\d+\.`)
)

const (
	shortLineRatio       = 0.4
	centeredLineDistance = 50
	minParagraphLines    = 3
	rightAlignedRatio    = 0.6
	leftAlignedRatio     = 0.8
)

// PageResult is the outcome of analyzing one page.
type PageResult struct {
	Issues          []document.LayoutIssue
	Warnings        []string
	HeadingCentered bool
	HeadingAtTop    bool
}

// Analyzer runs the layout checks against a rule set.
type Analyzer struct {
	rules *rules.RuleSet
}

// NewAnalyzer creates an analyzer for rs.
func NewAnalyzer(rs *rules.RuleSet) *Analyzer {
	return &Analyzer{rules: rs}
}

// Analyze runs AnalyzePage over every page of doc. Documents without page
// geometry bypass the checks: every page is reported centered and at the
// top with no issues, and a single document-level warning is returned.
func (a *Analyzer) Analyze(doc *document.Document) ([]document.AnalyzedPage, []string) {
	pages := make([]document.AnalyzedPage, 0, len(doc.Pages))
	for i, p := range doc.Pages {
		ap := document.AnalyzedPage{
			Index:        i + 1,
			Fragments:    p.Fragments,
			LayoutIssues: []document.LayoutIssue{},
			Warnings:     []string{},
		}
		if !doc.HasLayout {
			ap.HeadingCentered = true
			ap.HeadingAtTop = true
			pages = append(pages, ap)
			continue
		}
		res := a.AnalyzePage(p.Fragments, p.Width, p.Height, i+1)
		ap.LayoutIssues = res.Issues
		ap.Warnings = res.Warnings
		ap.HeadingCentered = res.HeadingCentered
		ap.HeadingAtTop = res.HeadingAtTop
		pages = append(pages, ap)
	}
	if !doc.HasLayout {
		return pages, []string{SkippedWarning}
	}
	return pages, nil
}

// AnalyzePage checks one page. pageIndex is the 1-based page number.
// pageHeight is accepted for symmetry with the extraction contract; all
// vertical checks are relative to the top edge.
func (a *Analyzer) AnalyzePage(fragments []document.TextFragment, pageWidth, pageHeight float64, pageIndex int) PageResult {
	res := PageResult{Issues: []document.LayoutIssue{}, Warnings: []string{}}

	items := visible(fragments)
	if len(items) == 0 {
		return res
	}
	cfg := a.rules.Layout

	heading := items[0]
	headingText := strings.TrimSpace(heading.Text)
	isChapter := chapterHeading.MatchString(headingText)

	if heading.Y < cfg.TopMarginThreshold {
		res.HeadingAtTop = true
	} else if isChapter {
		res.Issues = append(res.Issues, document.LayoutIssue{
			Kind:        document.IssueTopMargin,
			Message:     fmt.Sprintf("Heading %q is not at the top of the page. Found at y=%.0f.", headingText, heading.Y),
			PageIndex:   pageIndex,
			Severity:    document.SeverityError,
			BoundingBox: heading.Box(),
		})
	}

	if isChapter || capsHeading.MatchString(headingText) {
		diff := math.Abs(pageWidth/2 - (heading.X + heading.Width/2))
		if diff < cfg.CenteringTolerance {
			res.HeadingCentered = true
		} else if isChapter || a.rules.IsStructuralPage(pageIndex) {
			res.Issues = append(res.Issues, document.LayoutIssue{
				Kind:        document.IssueCentering,
				Message:     fmt.Sprintf("Heading %q is not centered. Off by %.0f units.", headingText, diff),
				PageIndex:   pageIndex,
				Severity:    document.SeverityError,
				BoundingBox: heading.Box(),
			})
		}
	}

	lines := GroupLines(items, cfg.LineTolerance)
	res.Issues = append(res.Issues, a.checkMargins(lines, pageWidth, pageIndex)...)

	if warning := a.checkJustification(lines, pageWidth, pageIndex); warning != "" {
		res.Warnings = append(res.Warnings, warning)
	}
	return res
}

func (a *Analyzer) checkMargins(lines []Line, pageWidth float64, pageIndex int) []document.LayoutIssue {
	cfg := a.rules.Layout
	var issues []document.LayoutIssue
	minor := 0
	for _, line := range lines {
		left, right := line.Left(), line.Right()
		switch {
		case left < cfg.BorderMargin-cfg.MajorMarginSlack:
			issues = append(issues, document.LayoutIssue{
				Kind:        document.IssueMargin,
				Message:     fmt.Sprintf("Text significantly outside left margin (x=%.0f)", left),
				PageIndex:   pageIndex,
				Severity:    document.SeverityError,
				BoundingBox: line.Box(),
			})
		case left < cfg.BorderMargin-cfg.MinorMarginSlack && minor < cfg.MaxMinorMarginWarnings:
			minor++
			issues = append(issues, document.LayoutIssue{
				Kind:        document.IssueMargin,
				Message:     fmt.Sprintf("Text slightly outside left margin (x=%.0f)", left),
				PageIndex:   pageIndex,
				Severity:    document.SeverityWarning,
				BoundingBox: line.Box(),
			})
		}
		switch {
		case right > pageWidth-cfg.BorderMargin+cfg.MajorMarginSlack:
			issues = append(issues, document.LayoutIssue{
				Kind:        document.IssueMargin,
				Message:     fmt.Sprintf("Text significantly outside right margin (right edge %.0f)", right),
				PageIndex:   pageIndex,
				Severity:    document.SeverityError,
				BoundingBox: line.Box(),
			})
		case right > pageWidth-cfg.BorderMargin+cfg.MinorMarginSlack && minor < cfg.MaxMinorMarginWarnings:
			minor++
			issues = append(issues, document.LayoutIssue{
				Kind:        document.IssueMargin,
				Message:     fmt.Sprintf("Text slightly outside right margin (right edge %.0f)", right),
				PageIndex:   pageIndex,
				Severity:    document.SeverityWarning,
				BoundingBox: line.Box(),
			})
		}
	}
	return issues
}

// isParagraphLine excludes headings, short lines, centered lines and list items.
func isParagraphLine(line Line, pageWidth, margin float64) bool {
	text := line.Text()
	if text == strings.ToUpper(text) && len(text) > 3 {
		return false
	}
	if headingPrefix.MatchString(text) || numberedItem.MatchString(text) {
		return false
	}
	if line.Width() < (pageWidth-2*margin)*shortLineRatio {
		return false
	}
	return math.Abs(pageWidth/2-line.Center()) >= centeredLineDistance
}

func (a *Analyzer) checkJustification(lines []Line, pageWidth float64, pageIndex int) string {
	cfg := a.rules.Layout
	leftMargin := cfg.BorderMargin
	rightMargin := pageWidth - cfg.BorderMargin
	tolerance := cfg.JustificationTolerance

	var alignedLeft, alignedRight, total int
	for _, line := range lines {
		if !isParagraphLine(line, pageWidth, leftMargin) {
			continue
		}
		total++
		if math.Abs(line.Left()-leftMargin) < 2*tolerance {
			alignedLeft++
		}
		if math.Abs(line.Right()-rightMargin) < 3*tolerance {
			alignedRight++
		}
	}
	if total < minParagraphLines {
		return ""
	}

	rightRatio := float64(alignedRight) / float64(total)
	leftRatio := float64(alignedLeft) / float64(total)
	if rightRatio > rightAlignedRatio && leftRatio > leftAlignedRatio {
		return ""
	}
	return fmt.Sprintf("Page %d: Paragraphs may not be fully justified (%.0f%% right-aligned)", pageIndex, math.Round(rightRatio*100))
}
