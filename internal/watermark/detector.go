// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watermark finds a repeating registration-number watermark by
// counting identifier-shaped tokens across a sample of pages.
package watermark

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"reportcheck/internal/document"
	"reportcheck/internal/rules"
)

// Detector detects the watermark of a document.
type Detector struct {
	rules *rules.RuleSet
	token *regexp.Regexp
}

// NewDetector creates a detector for rs.
func NewDetector(rs *rules.RuleSet) *Detector {
	return &Detector{
		rules: rs,
		token: regexp.MustCompile(fmt.Sprintf(`\b\d{%d}\b`, rs.Identifier.Length)),
	}
}

// SamplePages returns the pages inspected for a document of totalPages:
// the leading pages, the middle page, the second-to-last and the last page,
// ascending and without duplicates.
func (d *Detector) SamplePages(totalPages int) []int {
	candidates := make([]int, 0, d.rules.Watermark.LeadingPages+3)
	for p := 1; p <= min(d.rules.Watermark.LeadingPages, totalPages); p++ {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, totalPages/2, totalPages-1, totalPages)

	seen := make(map[int]bool, len(candidates))
	pages := make([]int, 0, len(candidates))
	for _, p := range candidates {
		if p < 1 || p > totalPages || seen[p] {
			continue
		}
		seen[p] = true
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Detect analyzes pageTexts, keyed by 1-based page number.
func (d *Detector) Detect(pageTexts map[int]string, totalPages int) *document.WatermarkInfo {
	cfg := d.rules.Watermark
	sample := d.SamplePages(totalPages)
	info := &document.WatermarkInfo{
		Confidence:   document.ConfidenceLow,
		PagesFound:   []int{},
		SampledPages: sample,
	}
	if len(sample) == 0 {
		validation := rules.ValidateText(d.rules.Identifier, "")
		info.IdentifierValidation = &validation
		return info
	}

	counts := make(map[string]int)
	var order []string
	found := make(map[int]bool)
	var all strings.Builder

	for _, p := range sample {
		text := pageTexts[p]
		all.WriteString(text)
		all.WriteString(" ")
		for _, tok := range d.token.FindAllString(text, -1) {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
		if rules.MatchAny(cfg.Keywords, text) {
			found[p] = true
		}
	}

	best, maxOccurrences := "", 0
	for _, tok := range order {
		if counts[tok] > maxOccurrences {
			best, maxOccurrences = tok, counts[tok]
		}
	}

	if best != "" && maxOccurrences >= cfg.MinOccurrences {
		info.Text = best
		ratio := float64(maxOccurrences) / float64(len(sample))
		switch {
		case ratio >= cfg.HighRatio:
			info.Confidence = document.ConfidenceHigh
		case ratio >= cfg.MediumRatio:
			info.Confidence = document.ConfidenceMedium
		}
		for _, p := range sample {
			if strings.Contains(pageTexts[p], best) {
				found[p] = true
			}
		}
	}

	source := info.Text
	if source == "" {
		source = all.String()
	}
	validation := rules.ValidateText(d.rules.Identifier, source)
	info.IdentifierValidation = &validation
	if validation.IsValid {
		if info.Text == "" {
			info.Text = validation.DetectedValue
		}
		if info.Confidence == document.ConfidenceLow {
			info.Confidence = document.ConfidenceMedium
		}
	}

	for p := range found {
		info.PagesFound = append(info.PagesFound, p)
	}
	sort.Ints(info.PagesFound)

	info.Present = len(info.PagesFound) > 0 || info.Text != "" || validation.IsValid
	return info
}
