// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package rules defines the institutional report template: expected
// sections, layout tolerances, the registration number format and the
// scoring weights. A RuleSet is read-only once built and is passed to every
// analysis component by the caller.
package rules

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// ErrInvalidWeights is returned when category weights do not sum to 100.
var ErrInvalidWeights = errors.New("scoring weights must sum to 100")

// minIdentifierLength covers the two-digit year, the five-digit
// organization code and at least one serial digit.
const minIdentifierLength = 8

// PageRange is an inclusive, 0-based page index window.
type PageRange struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// WordCountRange bounds the number of words on a matched section page.
type WordCountRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// SectionRule describes one expected section of the report. Exactly one of
// ExpectedPage (1-based) or PageRange is set.
type SectionRule struct {
	Name             string
	ExpectedPage     int
	PageRange        *PageRange
	RequiredPatterns []*regexp.Regexp
	OptionalPatterns []*regexp.Regexp
	Optional         bool
	WordCount        *WordCountRange
	// Flags lists the structure flags set when this section is found.
	Flags       []string
	Suggestions []string
}

// Window returns the inclusive 0-based page index window the rule inspects.
func (r SectionRule) Window() (start, end int) {
	if r.ExpectedPage > 0 {
		return r.ExpectedPage - 1, r.ExpectedPage - 1
	}
	if r.PageRange != nil {
		return r.PageRange.Start, r.PageRange.End
	}
	return 0, 9
}

// Covers reports whether the 1-based page number falls inside the rule's window.
func (r SectionRule) Covers(pageNumber int) bool {
	start, end := r.Window()
	idx := pageNumber - 1
	return idx >= start && idx <= end
}

// ExpectedLocation renders the window for messages, e.g. "page 1" or "pages 2-3".
func (r SectionRule) ExpectedLocation() string {
	start, end := r.Window()
	if start == end {
		return fmt.Sprintf("page %d", start+1)
	}
	return fmt.Sprintf("pages %d-%d", start+1, end+1)
}

// ChapterExpectation is one chapter the template expects.
type ChapterExpectation struct {
	Number  int      `yaml:"number" json:"number"`
	Title   string   `yaml:"title" json:"title"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// LayoutRules holds the geometric tolerances used by the layout analyzer,
// all in page-content units.
type LayoutRules struct {
	TopMarginThreshold     float64 `yaml:"top_margin_threshold" json:"top_margin_threshold"`
	CenteringTolerance     float64 `yaml:"centering_tolerance" json:"centering_tolerance"`
	BorderMargin           float64 `yaml:"border_margin" json:"border_margin"`
	MinorMarginSlack       float64 `yaml:"minor_margin_slack" json:"minor_margin_slack"`
	MajorMarginSlack       float64 `yaml:"major_margin_slack" json:"major_margin_slack"`
	MaxMinorMarginWarnings int     `yaml:"max_minor_margin_warnings" json:"max_minor_margin_warnings"`
	LineTolerance          float64 `yaml:"line_tolerance" json:"line_tolerance"`
	JustificationTolerance float64 `yaml:"justification_tolerance" json:"justification_tolerance"`
	// PagesChecked caps how many leading pages count toward the layout score.
	PagesChecked int `yaml:"pages_checked" json:"pages_checked"`
}

// IdentifierFormat describes the registration number (RRN).
type IdentifierFormat struct {
	Length   int      `yaml:"length" json:"length"`
	YearMin  int      `yaml:"year_min" json:"year_min"`
	YearMax  int      `yaml:"year_max" json:"year_max"`
	OrgCodes []string `yaml:"org_codes" json:"org_codes"`
	Example  string   `yaml:"example" json:"example"`
}

// Description renders the expected format for messages.
func (f IdentifierFormat) Description() string {
	return fmt.Sprintf("%d digits: year code %d-%d, organization code %v, roll number (e.g. %s)",
		f.Length, f.YearMin, f.YearMax, f.OrgCodes, f.Example)
}

// WatermarkRules tunes the frequency-based watermark detector.
type WatermarkRules struct {
	LeadingPages   int              `yaml:"leading_pages" json:"leading_pages"`
	MinOccurrences int              `yaml:"min_occurrences" json:"min_occurrences"`
	HighRatio      float64          `yaml:"high_ratio" json:"high_ratio"`
	MediumRatio    float64          `yaml:"medium_ratio" json:"medium_ratio"`
	Keywords       []*regexp.Regexp `yaml:"-" json:"-"`
}

// TOCRules tunes the table-of-contents cross-check.
type TOCRules struct {
	SearchPages     int     `yaml:"search_pages" json:"search_pages"`
	FooterScanPages int     `yaml:"footer_scan_pages" json:"footer_scan_pages"`
	FooterBand      float64 `yaml:"footer_band" json:"footer_band"`
	DefaultOffset   int     `yaml:"default_offset" json:"default_offset"`
}

// PageLimits sets the page-count thresholds.
type PageLimits struct {
	Minimum     int `yaml:"minimum" json:"minimum"`
	Recommended int `yaml:"recommended" json:"recommended"`
}

// Weights are the scoring category weights. They must sum to 100.
type Weights struct {
	PageCount  float64 `yaml:"page_count" json:"page_count"`
	Structure  float64 `yaml:"structure" json:"structure"`
	Watermark  float64 `yaml:"watermark" json:"watermark"`
	Layout     float64 `yaml:"layout" json:"layout"`
	Formatting float64 `yaml:"formatting" json:"formatting"`
}

// Sum returns the total of all category weights.
func (w Weights) Sum() float64 {
	return w.PageCount + w.Structure + w.Watermark + w.Layout + w.Formatting
}

// RuleSet is the complete template definition.
type RuleSet struct {
	Name       string
	Sections   []SectionRule
	Chapters   []ChapterExpectation
	Layout     LayoutRules
	Identifier IdentifierFormat
	Watermark  WatermarkRules
	TOC        TOCRules
	Pages      PageLimits
	Weights    Weights
}

// Validate checks the invariants the analysis components rely on.
func (rs *RuleSet) Validate() error {
	if math.Abs(rs.Weights.Sum()-100) > 1e-9 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidWeights, rs.Weights.Sum())
	}
	for _, s := range rs.Sections {
		if len(s.RequiredPatterns) == 0 && !s.Optional {
			return fmt.Errorf("section %q: required section needs at least one required pattern", s.Name)
		}
		if s.ExpectedPage > 0 && s.PageRange != nil {
			return fmt.Errorf("section %q: set either expected page or page range, not both", s.Name)
		}
		if s.PageRange != nil && (s.PageRange.Start < 0 || s.PageRange.End < s.PageRange.Start) {
			return fmt.Errorf("section %q: invalid page range [%d,%d]", s.Name, s.PageRange.Start, s.PageRange.End)
		}
	}
	// The year, org code and serial fields need at least eight digits
	if rs.Identifier.Length < minIdentifierLength {
		return fmt.Errorf("identifier length must be at least %d, got %d", minIdentifierLength, rs.Identifier.Length)
	}
	return nil
}

// RequiredSectionCount returns the number of non-optional sections.
func (rs *RuleSet) RequiredSectionCount() int {
	n := 0
	for _, s := range rs.Sections {
		if !s.Optional {
			n++
		}
	}
	return n
}

// IsStructuralPage reports whether any section rule inspects the 1-based page.
func (rs *RuleSet) IsStructuralPage(pageNumber int) bool {
	for _, s := range rs.Sections {
		if s.Covers(pageNumber) {
			return true
		}
	}
	return false
}

// MatchAny reports whether any pattern matches text.
func MatchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// PartitionPatterns splits patterns into the sources that match text and those that do not.
func PartitionPatterns(patterns []*regexp.Regexp, text string) (matched, missing []string) {
	for _, p := range patterns {
		if p.MatchString(text) {
			matched = append(matched, p.String())
		} else {
			missing = append(missing, p.String())
		}
	}
	return matched, missing
}
