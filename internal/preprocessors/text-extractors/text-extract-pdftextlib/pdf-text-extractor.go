// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/unicode/norm"

	"reportcheck/internal/document"
)

const (
	// Gaps up to this multiple of the font size join glyphs without a space.
	tightGap = 0.3
	// Gaps up to this multiple of the font size join glyphs with a space.
	wordGap = 1.5
	// Baselines closer than this are treated as the same line.
	baselineTolerance = 0.5

	defaultFontSize = 12.0
	// A4 portrait, used when neither pdfcpu nor the page dictionary report a size.
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// Glyph is one positioned character run as read from a content stream.
// Y is the baseline measured from the bottom of the page.
type Glyph struct {
	S        string
	X        float64
	Y        float64
	W        float64
	FontSize float64
	Font     string
}

// Options controls extraction.
type Options struct {
	// MaxPages caps the number of pages read; zero reads every page.
	MaxPages int
}

// ExtractDocument reads every page of the PDF at filePath into positioned
// text fragments with a top-left origin.
func ExtractDocument(filePath string, opts Options) (*document.Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(filePath, conf); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	// pdfcpu reports effective page sizes with rotation applied; on failure
	// pageSize falls back to the MediaBox.
	dims, _ := api.PageDimsFile(filePath)

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if opts.MaxPages > 0 && pageCount > opts.MaxPages {
		pageCount = opts.MaxPages
	}

	doc := &document.Document{
		FileName:  filepath.Base(filePath),
		HasLayout: true,
		Pages:     make([]document.Page, 0, pageCount),
	}

	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		width, height := pageSize(p, dims, i)
		page := document.Page{Number: i, Width: width, Height: height}

		if !p.V.IsNull() {
			glyphs, err := readGlyphs(p)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", i, err)
			}
			page.Fragments = MergeGlyphs(glyphs, height)
		}
		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

// readGlyphs converts the page's content stream into glyphs. The content
// parser panics on malformed streams, so that is reported as an error.
func readGlyphs(p pdf.Page) (glyphs []Glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()

	content := p.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{
			S:        t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			Font:     t.Font,
		})
	}
	return glyphs, nil
}

func pageSize(p pdf.Page, dims []types.Dim, number int) (float64, float64) {
	if number-1 < len(dims) {
		if d := dims[number-1]; d.Width > 0 && d.Height > 0 {
			return d.Width, d.Height
		}
	}
	if !p.V.IsNull() {
		box := p.V.Key("MediaBox")
		if box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
	}
	return defaultPageWidth, defaultPageHeight
}

// MergeGlyphs merges glyphs, in content-stream order, into fragments. A
// glyph continues the current fragment when it sits on the same baseline
// and starts within wordGap font sizes of the fragment's right edge.
// Fragment Y is flipped to a top-left origin and Height is the font size.
func MergeGlyphs(glyphs []Glyph, pageHeight float64) []document.TextFragment {
	var fragments []document.TextFragment
	var current *document.TextFragment
	var baseline, fontSize float64
	var text strings.Builder

	flush := func(endsLine bool) {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(norm.NFKC.String(text.String()))
		current.EndsLine = endsLine
		if current.Text != "" {
			fragments = append(fragments, *current)
		}
		current = nil
		text.Reset()
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = defaultFontSize
		}

		if current != nil {
			sameLine := math.Abs(g.Y-baseline) < baselineTolerance
			gap := g.X - current.Right()
			switch {
			case !sameLine:
				flush(true)
			case gap <= tightGap*fontSize && gap >= -fontSize:
				text.WriteString(g.S)
				current.Width = g.X + g.W - current.X
				continue
			case gap > 0 && gap <= wordGap*fontSize:
				text.WriteByte(' ')
				text.WriteString(g.S)
				current.Width = g.X + g.W - current.X
				continue
			default:
				flush(false)
			}
		}

		baseline = g.Y
		fontSize = size
		current = &document.TextFragment{
			X:        g.X,
			Y:        pageHeight - g.Y,
			Width:    g.W,
			Height:   size,
			FontName: g.Font,
		}
		text.WriteString(g.S)
	}
	flush(true)

	return fragments
}
