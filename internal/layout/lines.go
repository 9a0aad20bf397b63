// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"math"
	"sort"
	"strings"

	"reportcheck/internal/document"
)

// Line is a visual line: fragments sharing a baseline, ordered left to right.
type Line struct {
	Y         float64
	Fragments []document.TextFragment
}

// Left returns the x coordinate of the line's first fragment.
func (l Line) Left() float64 {
	if len(l.Fragments) == 0 {
		return 0
	}
	return l.Fragments[0].X
}

// Right returns the right edge of the line's last fragment.
func (l Line) Right() float64 {
	if len(l.Fragments) == 0 {
		return 0
	}
	return l.Fragments[len(l.Fragments)-1].Right()
}

// Width is the horizontal extent of the line.
func (l Line) Width() float64 {
	return l.Right() - l.Left()
}

// Center is the horizontal midpoint of the line.
func (l Line) Center() float64 {
	return l.Left() + l.Width()/2
}

// Text joins the line's fragments with single spaces.
func (l Line) Text() string {
	return strings.TrimSpace(document.JoinFragments(l.Fragments))
}

// Box returns the line's bounding box.
func (l Line) Box() *document.Rect {
	h := 0.0
	for _, f := range l.Fragments {
		h = math.Max(h, f.Height)
	}
	return &document.Rect{X: l.Left(), Y: l.Y, Width: l.Width(), Height: h}
}

// GroupLines sorts fragments top to bottom and groups those whose y lies
// within tolerance of a line's first fragment. Fragments inside a line are
// ordered by x.
func GroupLines(fragments []document.TextFragment, tolerance float64) []Line {
	sorted := make([]document.TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var lines []Line
	for _, f := range sorted {
		placed := false
		for i := range lines {
			if math.Abs(lines[i].Y-f.Y) < tolerance {
				lines[i].Fragments = append(lines[i].Fragments, f)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, Line{Y: f.Y, Fragments: []document.TextFragment{f}})
		}
	}
	for i := range lines {
		frags := lines[i].Fragments
		sort.SliceStable(frags, func(a, b int) bool { return frags[a].X < frags[b].X })
	}
	return lines
}

// PageLines groups a page's fragments into lines and returns their texts
// joined by newlines, for per-line pattern matching.
func PageLines(fragments []document.TextFragment, tolerance float64) string {
	lines := GroupLines(visible(fragments), tolerance)
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text()
	}
	return strings.Join(texts, "\n")
}

func visible(fragments []document.TextFragment) []document.TextFragment {
	out := make([]document.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			out = append(out, f)
		}
	}
	return out
}
