// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"reportcheck/internal/document"
	"reportcheck/internal/formatters"
)

// Formatter implements text-based output formatting.
type Formatter struct{}

// NewFormatter creates a new text formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable report with colors, one block per document"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// palette holds the colors for one Format call so NoColor never touches
// the package-level color state.
type palette struct {
	green, yellow, red, cyan, magenta, bold *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		cyan:    color.New(color.FgCyan),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.FgWhite, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.green, p.yellow, p.red, p.cyan, p.magenta, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) tier(t document.Tier) *color.Color {
	switch t {
	case document.TierPass:
		return p.green
	case document.TierWarning:
		return p.yellow
	default:
		return p.red
	}
}

func (f *Formatter) Format(reports []document.DocumentReport, summary document.BatchSummary, options formatters.FormatterOptions) (string, error) {
	if len(reports) == 0 {
		return "No documents found.", nil
	}

	p := newPalette(options.NoColor)
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		f.appendReport(&b, p, r, options)
	}
	if len(reports) > 1 {
		b.WriteString("\n")
		f.appendSummary(&b, p, summary)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// appendReport writes the block for one document.
func (f *Formatter) appendReport(b *strings.Builder, p palette, r document.DocumentReport, options formatters.FormatterOptions) {
	if r.Status != document.StatusCompleted || r.Result == nil {
		p.bold.Fprintf(b, "%s", r.FileName)
		b.WriteString("  ")
		p.red.Fprintf(b, "[ERROR]")
		fmt.Fprintf(b, "\n  %s\n", r.Error)
		return
	}

	res := r.Result
	tier := r.Tier()
	p.bold.Fprintf(b, "%s", r.FileName)
	b.WriteString("  ")
	p.tier(tier).Fprintf(b, "[%s] %d/100", strings.ToUpper(string(tier)), res.Score)
	fmt.Fprintf(b, "  (%d pages", res.PageCount)
	if !res.HasLayout {
		b.WriteString(", text only")
	}
	b.WriteString(")\n")

	bd := res.Breakdown
	fmt.Fprintf(b, "  Breakdown: page count %.1f, structure %.1f, watermark %.1f, layout %.1f, formatting %.1f\n",
		bd.PageCount, bd.Structure, bd.Watermark, bd.Layout, bd.Formatting)

	if res.Watermark != nil {
		b.WriteString("  Watermark: ")
		if res.Watermark.Present {
			fmt.Fprintf(b, "%s (%s confidence)", res.Watermark.Text, res.Watermark.Confidence)
		} else {
			b.WriteString("not found")
		}
		if iv := res.Watermark.IdentifierValidation; iv != nil {
			if iv.IsValid {
				p.green.Fprintf(b, ", identifier valid")
			} else {
				p.yellow.Fprintf(b, ", %s", iv.Message)
			}
		}
		b.WriteString("\n")
	}

	for _, e := range res.Errors {
		p.red.Fprintf(b, "  ✗ ")
		fmt.Fprintf(b, "%s\n", e)
	}
	for _, w := range res.Warnings {
		p.yellow.Fprintf(b, "  ! ")
		fmt.Fprintf(b, "%s\n", w)
	}

	if options.Verbose {
		f.appendSections(b, p, res)
		f.appendTOC(b, p, res)
		f.appendLayout(b, p, res)
	}
}

// appendSections lists every section rule and how it matched.
func (f *Formatter) appendSections(b *strings.Builder, p palette, res *document.ValidationResult) {
	if len(res.Sections) == 0 {
		return
	}
	p.cyan.Fprintf(b, "  Sections:\n")
	for _, s := range res.Sections {
		switch {
		case s.Found:
			p.green.Fprintf(b, "    ✓ ")
			fmt.Fprintf(b, "%s (page %d", s.Name, s.PageIndex)
			if s.WordCount > 0 {
				fmt.Fprintf(b, ", %d words", s.WordCount)
			}
			b.WriteString(")\n")
		case s.Optional:
			p.yellow.Fprintf(b, "    - ")
			fmt.Fprintf(b, "%s (optional, expected %s)\n", s.Name, s.ExpectedPages)
		default:
			p.red.Fprintf(b, "    ✗ ")
			fmt.Fprintf(b, "%s (expected %s)\n", s.Name, s.ExpectedPages)
		}
		if !s.Found && len(s.MissingPatterns) > 0 {
			fmt.Fprintf(b, "        missing: %s\n", strings.Join(s.MissingPatterns, ", "))
		}
		if !s.Found {
			for _, hint := range s.Suggestions {
				p.magenta.Fprintf(b, "        → ")
				fmt.Fprintf(b, "%s\n", hint)
			}
		}
	}
}

// appendTOC lists table-of-contents entries and the page each maps to.
func (f *Formatter) appendTOC(b *strings.Builder, p palette, res *document.ValidationResult) {
	if res.TOC == nil {
		return
	}
	offset := fmt.Sprintf("offset %d", res.TOC.Offset)
	if !res.TOC.OffsetDetected {
		offset += ", assumed"
	}
	p.cyan.Fprintf(b, "  Table of contents (page %d, %s):\n", res.TOC.TOCPage, offset)
	for _, e := range res.TOC.Entries {
		mark, c := "✓", p.green
		if !e.Valid {
			mark, c = "✗", p.red
		}
		c.Fprintf(b, "    %s ", mark)
		fmt.Fprintf(b, "%s: listed page %d, physical page %d\n", e.Title, e.TOCPage, e.ActualIndex)
	}
}

// appendLayout lists layout issues page by page.
func (f *Formatter) appendLayout(b *strings.Builder, p palette, res *document.ValidationResult) {
	var issues []document.LayoutIssue
	for _, page := range res.Pages {
		issues = append(issues, page.LayoutIssues...)
	}
	if len(issues) == 0 {
		return
	}
	p.cyan.Fprintf(b, "  Layout issues:\n")
	for _, issue := range issues {
		c := p.yellow
		if issue.Severity == document.SeverityError {
			c = p.red
		}
		c.Fprintf(b, "    [%s] ", issue.Kind)
		fmt.Fprintf(b, "page %d: %s\n", issue.PageIndex, issue.Message)
	}
}

// appendSummary writes the batch totals.
func (f *Formatter) appendSummary(b *strings.Builder, p palette, s document.BatchSummary) {
	p.bold.Fprintf(b, "Summary: ")
	fmt.Fprintf(b, "%d documents, ", s.Total)
	p.green.Fprintf(b, "%d passed", s.Passed)
	b.WriteString(", ")
	p.yellow.Fprintf(b, "%d warnings", s.Warnings)
	b.WriteString(", ")
	p.red.Fprintf(b, "%d failed", s.Failed)
	fmt.Fprintf(b, ", %d errored", s.Errored)
	if s.Completed > 0 {
		fmt.Fprintf(b, ", average score %.1f", s.AverageScore)
	}
	b.WriteString("\n")
}

// Register the formatter during package initialization.
func init() {
	formatters.Register(NewFormatter())
}
