// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package structure matches the rule set's sections to pages, checks
// chapter sequencing and cross-checks the table of contents.
package structure

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"reportcheck/internal/document"
	"reportcheck/internal/rules"
)

var chapterPattern = regexp.MustCompile(`(?i)CHAPTER\s+(\d+)`)

// ChapterMatch is a chapter heading found on a page.
type ChapterMatch struct {
	Number int
	Page   int
}

// Result is the outcome of structure validation.
type Result struct {
	Flags           document.StructureFlags
	Sections        []document.SectionReport
	SectionErrors   []string
	SectionWarnings []string
	ChapterErrors   []string
	ChapterWarnings []string
	// Failures counts required sections that were not matched.
	Failures int
	Chapters []ChapterMatch
}

// Errors returns section errors followed by chapter errors.
func (r *Result) Errors() []string {
	return append(append([]string{}, r.SectionErrors...), r.ChapterErrors...)
}

// Warnings returns section warnings followed by chapter warnings.
func (r *Result) Warnings() []string {
	return append(append([]string{}, r.SectionWarnings...), r.ChapterWarnings...)
}

// Validator checks document structure against a rule set.
type Validator struct {
	rules *rules.RuleSet
}

// NewValidator creates a validator for rs.
func NewValidator(rs *rules.RuleSet) *Validator {
	return &Validator{rules: rs}
}

// Validate runs the section, closing-section and chapter checks.
func (v *Validator) Validate(pages []document.AnalyzedPage) *Result {
	res := &Result{Flags: document.NewStructureFlags()}
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text()
	}

	for _, rule := range v.rules.Sections {
		res.Sections = append(res.Sections, v.checkSection(rule, texts, res))
	}
	v.checkClosingSections(texts, res)
	v.checkChapters(pages, texts, res)
	return res
}

func (v *Validator) checkSection(rule rules.SectionRule, texts []string, res *Result) document.SectionReport {
	report := document.SectionReport{
		Name:          rule.Name,
		Optional:      rule.Optional,
		ExpectedPages: rule.ExpectedLocation(),
	}
	start, end := rule.Window()

	if rule.ExpectedPage > 0 && start >= len(texts) {
		if !rule.Optional {
			res.Failures++
			res.SectionErrors = append(res.SectionErrors, fmt.Sprintf(
				"Missing Page: %q expected on page %d, but the document has only %d pages.",
				rule.Name, rule.ExpectedPage, len(texts)))
			report.Suggestions = rule.Suggestions
		}
		return report
	}

	presence := rule.RequiredPatterns
	if len(presence) == 0 {
		presence = rule.OptionalPatterns
	}
	for i := start; i <= end && i < len(texts); i++ {
		if rules.MatchAny(presence, texts[i]) {
			report.Found = true
			report.PageIndex = i + 1
			break
		}
	}

	if !report.Found {
		report.Suggestions = rule.Suggestions
		if rule.Optional {
			res.SectionWarnings = append(res.SectionWarnings, fmt.Sprintf("Optional Section %q not found.", rule.Name))
		} else {
			res.Failures++
			res.SectionErrors = append(res.SectionErrors, fmt.Sprintf(
				"Missing Section: %q. Expected around %s.", rule.Name, rule.ExpectedLocation()))
		}
		return report
	}

	for _, flag := range rule.Flags {
		res.Flags[flag] = true
	}
	text := texts[report.PageIndex-1]
	matched, missing := rules.PartitionPatterns(rule.RequiredPatterns, text)
	optMatched, optMissing := rules.PartitionPatterns(rule.OptionalPatterns, text)
	report.MatchedPatterns = append(matched, optMatched...)
	report.MissingPatterns = append(missing, optMissing...)
	report.WordCount = len(strings.Fields(text))

	if wc := rule.WordCount; wc != nil && (report.WordCount < wc.Min || report.WordCount > wc.Max) {
		res.SectionWarnings = append(res.SectionWarnings, fmt.Sprintf(
			"Section %q on page %d has %d words; expected between %d and %d.",
			rule.Name, report.PageIndex, report.WordCount, wc.Min, wc.Max))
	}
	return report
}

// checkClosingSections scans every page for conclusion and references
// material, which is not position-constrained.
func (v *Validator) checkClosingSections(texts []string, res *Result) {
	for _, t := range texts {
		upper := strings.ToUpper(t)
		if strings.Contains(upper, "CONCLUSION") || strings.Contains(upper, "SUMMARY") {
			res.Flags[document.FlagConclusion] = true
		}
		if strings.Contains(upper, "REFERENCE") || strings.Contains(upper, "BIBLIOGRAPHY") {
			res.Flags[document.FlagReferences] = true
		}
	}
	if !res.Flags[document.FlagConclusion] {
		res.SectionWarnings = append(res.SectionWarnings, "Conclusion section not found.")
	}
	if !res.Flags[document.FlagReferences] {
		res.SectionWarnings = append(res.SectionWarnings, "References or bibliography section not found.")
	}
}

func (v *Validator) checkChapters(pages []document.AnalyzedPage, texts []string, res *Result) {
	for i, t := range texts {
		m := chapterPattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		res.Chapters = append(res.Chapters, ChapterMatch{Number: n, Page: pages[i].Index})
	}
	sort.SliceStable(res.Chapters, func(a, b int) bool { return res.Chapters[a].Page < res.Chapters[b].Page })

	last := 0
	distinct := make(map[int]bool)
	for _, c := range res.Chapters {
		distinct[c.Number] = true
		switch {
		case c.Number < last:
			res.ChapterErrors = append(res.ChapterErrors, fmt.Sprintf(
				"Chapter Sequence Error: Chapter %d found on page %d after Chapter %d.", c.Number, c.Page, last))
		case c.Number > last+1 && last != 0:
			res.ChapterWarnings = append(res.ChapterWarnings, fmt.Sprintf(
				"Chapter Gap: Chapter %d found after Chapter %d. Missing Chapter %d?", c.Number, last, last+1))
		}
		last = c.Number
	}

	if expected := len(v.rules.Chapters); len(distinct) < expected {
		res.ChapterWarnings = append(res.ChapterWarnings, fmt.Sprintf(
			"Only %d chapter(s) found; at least %d expected.", len(distinct), expected))
	}
}
