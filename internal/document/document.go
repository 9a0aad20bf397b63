// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package document holds the values that flow through a validation run:
// extracted pages, per-page layout findings and the final result.
package document

import (
	"strings"
)

// TextFragment is one positioned run of text as produced by an extraction
// provider. Coordinates use a top-left origin in page-content units.
type TextFragment struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontName string  `json:"font_name,omitempty"`
	EndsLine bool    `json:"ends_line,omitempty"`
}

// Right returns the x coordinate of the fragment's right edge.
func (f TextFragment) Right() float64 {
	return f.X + f.Width
}

// Box returns the fragment's bounding box.
func (f TextFragment) Box() *Rect {
	return &Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// Rect is an axis-aligned rectangle in page-content units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page is one extracted page. Number is 1-based.
type Page struct {
	Number    int            `json:"number"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Fragments []TextFragment `json:"fragments"`
}

// Text joins the page's fragment texts with single spaces.
func (p Page) Text() string {
	return JoinFragments(p.Fragments)
}

// Document is the output of the extraction boundary. HasLayout is false
// when the source format carries no page geometry (for example DOCX), in
// which case layout checks are bypassed.
type Document struct {
	FileName  string `json:"file_name"`
	HasLayout bool   `json:"has_layout"`
	Pages     []Page `json:"pages"`
}

// PageCount returns the number of extracted pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// PageTexts returns the space-joined text of every page keyed by 1-based page number.
func (d *Document) PageTexts() map[int]string {
	texts := make(map[int]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i+1] = p.Text()
	}
	return texts
}

// JoinFragments concatenates fragment texts separated by single spaces.
func JoinFragments(fragments []TextFragment) string {
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}
