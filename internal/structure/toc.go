// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package structure

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"reportcheck/internal/document"
	"reportcheck/internal/layout"
	"reportcheck/internal/rules"
)

var (
	tocChapterLine = regexp.MustCompile(`(?im)CHAPTER\s*[-–]?\s*(\d+)\b([^0-9\n]*?)(\d+)\s*$`)

	tocFixedEntries = []struct {
		title   string
		pattern *regexp.Regexp
	}{
		{"List of Abbreviations", regexp.MustCompile(`(?im)^\s*LIST OF ABBREVIATIONS[^\d\n]*?(\d+)\s*$`)},
		{"List of Figures", regexp.MustCompile(`(?im)^\s*LIST OF FIGURES[^\d\n]*?(\d+)\s*$`)},
		{"List of Tables", regexp.MustCompile(`(?im)^\s*LIST OF TABLES[^\d\n]*?(\d+)\s*$`)},
		{"Abstract", regexp.MustCompile(`(?im)^\s*ABSTRACT[^\d\n]*?(\d+)\s*$`)},
		{"Conclusion", regexp.MustCompile(`(?im)^\s*CONCLUSIONS?\b[^\d\n]*?(\d+)\s*$`)},
		{"References", regexp.MustCompile(`(?im)^\s*(?:REFERENCES|BIBLIOGRAPHY)[^\d\n]*?(\d+)\s*$`)},
	}
)

// tocEntry is a parsed line of the table of contents.
type tocEntry struct {
	title    string
	keywords []string
	chapter  int
	page     int
}

// TOCChecker cross-checks table-of-contents page references against the
// physical pages they point to. All findings are warnings.
type TOCChecker struct {
	rules *rules.RuleSet
}

// NewTOCChecker creates a checker for rs.
func NewTOCChecker(rs *rules.RuleSet) *TOCChecker {
	return &TOCChecker{rules: rs}
}

// CrossCheck returns nil when no table of contents is found in the leading pages.
func (c *TOCChecker) CrossCheck(pages []document.AnalyzedPage) (*document.TOCValidation, []string) {
	tocIdx := -1
	for i := 0; i < len(pages) && i < c.rules.TOC.SearchPages; i++ {
		if strings.Contains(strings.ToUpper(pages[i].Text()), "TABLE OF CONTENTS") {
			tocIdx = i
			break
		}
	}
	if tocIdx < 0 {
		return nil, nil
	}

	entries := parseTOC(layout.PageLines(pages[tocIdx].Fragments, c.rules.Layout.LineTolerance))
	offset, detected := c.numberingOffset(pages)
	validation := &document.TOCValidation{
		TOCPage:        tocIdx + 1,
		Offset:         offset,
		OffsetDetected: detected,
		Entries:        []document.TOCEntry{},
	}

	var warnings []string
	for _, e := range entries {
		actual := offset + e.page - 1
		entry := document.TOCEntry{Title: e.title, TOCPage: e.page, ActualIndex: actual}
		switch {
		case actual < 0 || actual >= len(pages):
			warnings = append(warnings, fmt.Sprintf(
				"TOC entry %q points to page %d, which may be out of range (document has %d pages).",
				e.title, e.page, len(pages)))
		case c.entryMatches(e, pages[actual]):
			entry.Valid = true
		default:
			warnings = append(warnings, fmt.Sprintf(
				"TOC mismatch: %q is listed on page %d but physical page %d does not contain it.",
				e.title, e.page, actual+1))
		}
		validation.Entries = append(validation.Entries, entry)
	}
	return validation, warnings
}

func parseTOC(text string) []tocEntry {
	var entries []tocEntry
	for _, m := range tocChapterLine.FindAllStringSubmatch(text, -1) {
		chapter, _ := strconv.Atoi(m[1])
		page, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		name := strings.Trim(m[2], " .-–:\t")
		title := fmt.Sprintf("Chapter %d", chapter)
		if name != "" {
			title += " " + name
		}
		entries = append(entries, tocEntry{title: title, keywords: keywords(name), chapter: chapter, page: page})
	}
	for _, fixed := range tocFixedEntries {
		m := fixed.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, tocEntry{title: fixed.title, keywords: keywords(fixed.title), page: page})
	}
	return entries
}

// keywords returns the words of title longer than two characters.
func keywords(title string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(title, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		if len([]rune(w)) > 2 {
			out = append(out, strings.ToUpper(w))
		}
	}
	return out
}

func (c *TOCChecker) entryMatches(e tocEntry, page document.AnalyzedPage) bool {
	text := strings.ToUpper(page.Text())
	for _, kw := range e.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	if len(e.keywords) == 0 && e.chapter > 0 {
		if regexp.MustCompile(fmt.Sprintf(`CHAPTER\s*%d\b`, e.chapter)).MatchString(text) {
			return true
		}
	}
	return strings.Contains(c.footerText(page.Fragments), strconv.Itoa(e.page))
}

// footer returns the fragments in the bottom strip of a page.
func (c *TOCChecker) footer(fragments []document.TextFragment) []document.TextFragment {
	maxY := 0.0
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" && f.Y > maxY {
			maxY = f.Y
		}
	}
	if maxY <= 0 {
		return nil
	}
	var out []document.TextFragment
	for _, f := range fragments {
		if f.Y > c.rules.TOC.FooterBand*maxY && strings.TrimSpace(f.Text) != "" {
			out = append(out, f)
		}
	}
	return out
}

func (c *TOCChecker) footerText(fragments []document.TextFragment) string {
	return document.JoinFragments(c.footer(fragments))
}

// numberingOffset finds the physical page index where arabic numbering
// starts, by looking for a footer reading "1". It falls back to the
// configured default.
func (c *TOCChecker) numberingOffset(pages []document.AnalyzedPage) (int, bool) {
	for i := 0; i < len(pages) && i < c.rules.TOC.FooterScanPages; i++ {
		for _, f := range c.footer(pages[i].Fragments) {
			if strings.TrimSpace(f.Text) == "1" {
				return i, true
			}
		}
	}
	return c.rules.TOC.DefaultOffset, false
}
