// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds synthetic extracted reports for tests.
package testutil

import (
	"fmt"
	"strconv"

	"reportcheck/internal/document"
)

// A4 page size in points.
const (
	PageWidth  = 595.0
	PageHeight = 842.0
)

const (
	glyphWidth = 7.0
	lineHeight = 14.0
	footerY    = 800.0

	// Physical page index where arabic page numbering starts.
	numberingOffset = 7
)

// BodyLine is ordinary paragraph text free of watermark keywords.
const BodyLine = "The intern worked on backend services and deployment tooling for the team"

// Section keys accepted by WithoutSection.
const (
	SectionCover       = "cover"
	SectionBonafide    = "bonafide"
	SectionCertificate = "certificate"
	SectionViva        = "viva"
	SectionAck         = "ack"
	SectionTOC         = "toc"
	SectionAbstract    = "abstract"
	SectionReferences  = "references"
)

type options struct {
	pages          int
	chapters       []int
	rrn            string
	watermarkPages map[int]bool
	watermarkAll   bool
	omit           map[string]bool
	lowHeadings    map[int]bool
}

// Option customizes a synthetic report.
type Option func(*options)

// WithPages sets the physical page count.
func WithPages(n int) Option {
	return func(o *options) { o.pages = n }
}

// WithChapters sets the chapter numbers, in page order.
func WithChapters(numbers ...int) Option {
	return func(o *options) { o.chapters = numbers }
}

// WithRRN sets the registration number stamped as the watermark.
func WithRRN(rrn string) Option {
	return func(o *options) { o.rrn = rrn }
}

// WithWatermarkOn stamps the watermark only on the given pages.
func WithWatermarkOn(pages ...int) Option {
	return func(o *options) {
		o.watermarkAll = false
		o.watermarkPages = make(map[int]bool, len(pages))
		for _, p := range pages {
			o.watermarkPages[p] = true
		}
	}
}

// WithoutSection leaves out a front-matter section.
func WithoutSection(key string) Option {
	return func(o *options) { o.omit[key] = true }
}

// WithLowHeadings moves chapter headings on the given pages down the page.
func WithLowHeadings(pages ...int) Option {
	return func(o *options) {
		for _, p := range pages {
			o.lowHeadings[p] = true
		}
	}
}

// ChapterPage returns the physical page carrying the i-th chapter (0-based).
func ChapterPage(i int) int {
	return 8 + 2*i
}

// Centered returns a fragment horizontally centered on the page.
func Centered(text string, y float64) document.TextFragment {
	w := float64(len(text)) * glyphWidth
	return document.TextFragment{Text: text, X: (PageWidth - w) / 2, Y: y, Width: w, Height: lineHeight, EndsLine: true}
}

// Body returns a full-width paragraph line.
func Body(text string, y float64) document.TextFragment {
	return document.TextFragment{Text: text, X: 50, Y: y, Width: PageWidth - 100, Height: 12, EndsLine: true}
}

type pageBuilder struct {
	number    int
	fragments []document.TextFragment
	y         float64
}

func (b *pageBuilder) heading(text string) {
	b.fragments = append(b.fragments, Centered(text, b.y))
	b.y += 2 * lineHeight
}

func (b *pageBuilder) body(lines ...string) {
	for _, l := range lines {
		b.fragments = append(b.fragments, Body(l, b.y))
		b.y += lineHeight
	}
}

func (b *pageBuilder) paragraph(n int) {
	for i := 0; i < n; i++ {
		b.body(BodyLine)
	}
}

// NewReport builds a layout-bearing report that passes every check by
// default: 35 pages, front matter in its expected windows, chapters 1-11,
// a numbered table of contents and a valid watermark on every page.
func NewReport(opts ...Option) *document.Document {
	o := &options{
		pages:        35,
		chapters:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		rrn:          "230171601140",
		watermarkAll: true,
		omit:         map[string]bool{},
		lowHeadings:  map[int]bool{},
	}
	for _, opt := range opts {
		opt(o)
	}

	builders := make([]*pageBuilder, o.pages)
	for i := range builders {
		builders[i] = &pageBuilder{number: i + 1, y: 72}
	}
	page := func(n int) *pageBuilder {
		if n < 1 || n > len(builders) {
			return nil
		}
		return builders[n-1]
	}

	if b := page(1); b != nil && !o.omit[SectionCover] {
		b.heading("AN INTERNSHIP REPORT")
		b.heading("CLOUD DEPLOYMENT PLATFORM")
		b.body("Submitted by", "Student Name ("+o.rrn+")", "in partial fulfillment for the award of the degree of",
			"Bachelor of Technology", "Department of Computer Science and Engineering")
	}
	if b := page(2); b != nil && !o.omit[SectionBonafide] {
		b.heading("BONAFIDE CERTIFICATE")
		b.body("Certified that this internship report is the bonafide work of the student", "who carried out the work under my supervision")
	}
	if b := page(3); b != nil && !o.omit[SectionCertificate] {
		b.heading("INTERNSHIP CERTIFICATE")
		b.paragraph(3)
	}
	if b := page(4); b != nil && !o.omit[SectionViva] {
		b.heading("VIVA VOCE EXAMINATION")
		b.body("Internal Examiner", "External Examiner")
	}
	if b := page(5); b != nil && !o.omit[SectionAck] {
		b.heading("ACKNOWLEDGEMENT")
		b.paragraph(8)
	}
	if b := page(6); b != nil && !o.omit[SectionTOC] {
		b.heading("TABLE OF CONTENTS")
		for i, n := range o.chapters {
			logical := ChapterPage(i) - numberingOffset
			b.fragments = append(b.fragments,
				document.TextFragment{Text: fmt.Sprintf("CHAPTER %d", n), X: 50, Y: b.y, Width: 70, Height: 12},
				document.TextFragment{Text: chapterTitle(n), X: 140, Y: b.y, Width: 200, Height: 12},
				document.TextFragment{Text: strconv.Itoa(logical), X: 530, Y: b.y, Width: 14, Height: 12, EndsLine: true},
			)
			b.y += lineHeight
		}
		if refs := referencesPage(o); refs > 0 {
			b.fragments = append(b.fragments,
				document.TextFragment{Text: "REFERENCES", X: 50, Y: b.y, Width: 90, Height: 12},
				document.TextFragment{Text: strconv.Itoa(refs - numberingOffset), X: 530, Y: b.y, Width: 14, Height: 12, EndsLine: true},
			)
		}
	}
	if b := page(7); b != nil && !o.omit[SectionAbstract] {
		b.heading("ABSTRACT")
		b.paragraph(12)
	}
	for i, n := range o.chapters {
		b := page(ChapterPage(i))
		if b == nil {
			break
		}
		if o.lowHeadings[b.number] {
			b.y = 300
		}
		b.heading(fmt.Sprintf("CHAPTER %d", n))
		b.heading(chapterTitle(n))
		b.paragraph(20)
		if next := page(ChapterPage(i) + 1); next != nil {
			next.paragraph(22)
		}
	}
	if refs := referencesPage(o); refs > 0 && !o.omit[SectionReferences] {
		b := page(refs)
		b.heading("REFERENCES")
		b.body("[1] Cloud native patterns, 2021", "[2] Distributed systems in practice, 2019")
	}

	doc := &document.Document{FileName: "report.pdf", HasLayout: true}
	for _, b := range builders {
		frags := b.fragments
		if b.number > numberingOffset {
			frags = append(frags, Centered(strconv.Itoa(b.number-numberingOffset), footerY))
		}
		if o.watermarkAll || o.watermarkPages[b.number] {
			frags = append(frags, Centered(o.rrn, 420))
		}
		doc.Pages = append(doc.Pages, document.Page{
			Number:    b.number,
			Width:     PageWidth,
			Height:    PageHeight,
			Fragments: frags,
		})
	}
	return doc
}

func referencesPage(o *options) int {
	p := ChapterPage(len(o.chapters))
	if p > o.pages {
		p = o.pages
	}
	if p <= ChapterPage(len(o.chapters)-1) {
		return 0
	}
	return p
}

func chapterTitle(n int) string {
	titles := map[int]string{
		1:  "INTRODUCTION",
		2:  "COMPANY PROFILE",
		3:  "INTERNSHIP ACTIVITIES",
		4:  "SYSTEM ARCHITECTURE",
		5:  "TECHNOLOGIES USED",
		6:  "IMPLEMENTATION",
		7:  "TESTING",
		8:  "DEPLOYMENT",
		9:  "RESULTS",
		10: "LEARNING OUTCOMES",
		11: "CONCLUSION AND FUTURE WORK",
	}
	if t, ok := titles[n]; ok {
		return t
	}
	return fmt.Sprintf("TOPIC %d", n)
}

// Degraded builds a single-page document without geometry, the way the
// DOCX provider emits it.
func Degraded(text string) *document.Document {
	return &document.Document{
		FileName: "report.docx",
		Pages: []document.Page{{
			Number:    1,
			Fragments: []document.TextFragment{{Text: text}},
		}},
	}
}
