// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package help explains the rules a report is validated against.
package help

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"reportcheck/internal/rules"
)

// System renders help content for a rule set.
type System struct {
	rules  *rules.RuleSet
	out    io.Writer
	colors map[string]*color.Color
}

// NewSystem creates a help system writing to out.
func NewSystem(rs *rules.RuleSet, out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"positive": color.New(color.FgGreen),
		"negative": color.New(color.FgRed),
		"warning":  color.New(color.FgYellow),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &System{rules: rs, out: out, colors: colors}
}

// FindSection looks a section up by case-insensitive name or by a unique
// name prefix, so "bonafide" finds "Bonafide Certificate".
func (h *System) FindSection(name string) (rules.SectionRule, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return rules.SectionRule{}, false
	}

	var matches []rules.SectionRule
	for _, s := range h.rules.Sections {
		lower := strings.ToLower(s.Name)
		if lower == want {
			return s, true
		}
		if strings.HasPrefix(lower, want) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return rules.SectionRule{}, false
}

// ShowSections lists every section with its expected location, followed by
// the scoring weights and page limits.
func (h *System) ShowSections() {
	h.colors["title"].Fprintf(h.out, "Sections checked by %s\n", h.rules.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len("Sections checked by ")+len(h.rules.Name)))
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  SECTION\tLOCATION\tREQUIRED")
	fmt.Fprintln(w, "  -------\t--------\t--------")
	for _, s := range h.rules.Sections {
		required := "yes"
		if s.Optional {
			required = "no"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", s.Name, s.ExpectedLocation(), required)
	}
	w.Flush()
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "SCORING WEIGHTS:")
	wt := h.rules.Weights
	fmt.Fprintf(h.out, "  Page count %.0f, structure %.0f, watermark %.0f, layout %.0f, formatting %.0f\n",
		wt.PageCount, wt.Structure, wt.Watermark, wt.Layout, wt.Formatting)
	fmt.Fprintln(h.out)

	if len(h.rules.Chapters) > 0 {
		h.colors["header"].Fprintln(h.out, "EXPECTED CHAPTERS:")
		for _, c := range h.rules.Chapters {
			fmt.Fprintf(h.out, "  %d. %s", c.Number, c.Title)
			if len(c.Aliases) > 0 {
				fmt.Fprintf(h.out, " (also: %s)", strings.Join(c.Aliases, ", "))
			}
			fmt.Fprintln(h.out)
		}
		fmt.Fprintln(h.out)
	}

	h.colors["header"].Fprintln(h.out, "PAGE COUNT:")
	fmt.Fprintf(h.out, "  At least %d pages required, %d recommended\n", h.rules.Pages.Minimum, h.rules.Pages.Recommended)
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "WATERMARK IDENTIFIER:")
	fmt.Fprintf(h.out, "  %s\n", h.rules.Identifier.Description())
	fmt.Fprintln(h.out)

	fmt.Fprintln(h.out, "For the patterns and fix suggestions of one section, use:")
	h.colors["example"].Fprintln(h.out, "  reportcheck explain <section>")
	if len(h.rules.Sections) > 0 {
		fmt.Fprintln(h.out)
		fmt.Fprintln(h.out, "Example:")
		h.colors["example"].Fprintf(h.out, "  reportcheck explain %q\n", h.rules.Sections[0].Name)
	}
}

// ShowSection displays the detail of one section. It returns false when
// the name matches no section.
func (h *System) ShowSection(name string) bool {
	s, ok := h.FindSection(name)
	if !ok {
		h.colors["negative"].Fprintf(h.out, "Error: Section '%s' not found.\n", name)
		fmt.Fprintln(h.out, "Use 'reportcheck explain' to see a list of sections.")
		return false
	}

	title := s.Name + " Section"
	h.colors["title"].Fprintln(h.out, title)
	fmt.Fprintln(h.out, strings.Repeat("=", len(title)))
	fmt.Fprintln(h.out)

	fmt.Fprintf(h.out, "Expected on %s", s.ExpectedLocation())
	if s.Optional {
		h.colors["warning"].Fprint(h.out, " (optional: a missing section only produces a warning)")
	}
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out)

	h.list("REQUIRED PATTERNS:", patternSources(s.RequiredPatterns))
	h.list("OPTIONAL PATTERNS:", patternSources(s.OptionalPatterns))

	if s.WordCount != nil {
		h.colors["header"].Fprintln(h.out, "WORD COUNT:")
		fmt.Fprintf(h.out, "  %d to %d words\n", s.WordCount.Min, s.WordCount.Max)
		fmt.Fprintln(h.out)
	}

	h.list("SETS STRUCTURE FLAGS:", s.Flags)

	if len(s.Suggestions) > 0 {
		h.colors["header"].Fprintln(h.out, "HOW TO FIX:")
		for _, suggestion := range s.Suggestions {
			fmt.Fprint(h.out, "  → ")
			h.colors["positive"].Fprintln(h.out, suggestion)
		}
		fmt.Fprintln(h.out)
	}
	return true
}

func (h *System) list(header string, items []string) {
	if len(items) == 0 {
		return
	}
	h.colors["header"].Fprintln(h.out, header)
	for _, item := range items {
		fmt.Fprint(h.out, "  - ")
		h.colors["item"].Fprintln(h.out, item)
	}
	fmt.Fprintln(h.out)
}

func patternSources(ps []*regexp.Regexp) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, strings.TrimPrefix(p.String(), "(?i)"))
	}
	return out
}
