// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractofficetextlib

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"reportcheck/internal/document"
)

const documentPart = "word/document.xml"

var (
	cellBoundaryRe = regexp.MustCompile(`</w:tc>\s*<w:tc[^>]*>`)
	rowBoundaryRe  = regexp.MustCompile(`</w:tr>\s*<w:tr[^>]*>`)
	emptyParaRe    = regexp.MustCompile(`<w:p(?:\s[^>]*)?/>`)
	openParaRe     = regexp.MustCompile(`<w:p(?:\s[^>]*)?>`)
	breakRe        = regexp.MustCompile(`<w:(br|cr)[^>]*/?>`)
	tabRe          = regexp.MustCompile(`<w:tab\b[^>]*/?>`)
	spacesRe       = regexp.MustCompile(`[ \t]*\t[ \t]*|[ ]{2,}`)
	blankLinesRe   = regexp.MustCompile(`\n\s*\n\s*\n+`)

	stripPolicy = bluemonday.StrictPolicy()
)

// ExtractDocument reads a DOCX file into a degraded document: a single page
// with zero geometry whose one fragment holds the full text, paragraphs
// separated by newlines. Layout checks are bypassed for such documents.
func ExtractDocument(filePath string) (*document.Document, error) {
	text, err := ExtractText(filePath)
	if err != nil {
		return nil, err
	}

	page := document.Page{Number: 1}
	if text != "" {
		page.Fragments = []document.TextFragment{{Text: text, EndsLine: true}}
	}

	return &document.Document{
		FileName:  filepath.Base(filePath),
		HasLayout: false,
		Pages:     []document.Page{page},
	}, nil
}

// ExtractText returns the body text of a DOCX file.
func ExtractText(filePath string) (string, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer reader.Close()

	var documentFile *zip.File
	for _, file := range reader.File {
		if file.Name == documentPart {
			documentFile = file
			break
		}
	}
	if documentFile == nil {
		return "", fmt.Errorf("invalid DOCX: %s not found in the archive", documentPart)
	}

	rc, err := documentFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return CleanWordXML(string(raw)), nil
}

// CleanWordXML converts WordprocessingML into plain text. Paragraphs and
// table rows become newlines, cells and tabs become tabs, and all
// remaining markup is stripped.
func CleanWordXML(xml string) string {
	// Whitespace between elements is insignificant in WordprocessingML.
	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(xml)
	cleaned = cellBoundaryRe.ReplaceAllString(cleaned, "\t")
	cleaned = rowBoundaryRe.ReplaceAllString(cleaned, "\n")
	cleaned = emptyParaRe.ReplaceAllString(cleaned, "\n")
	cleaned = openParaRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "</w:p>", "\n")
	cleaned = breakRe.ReplaceAllString(cleaned, "\n")
	cleaned = tabRe.ReplaceAllString(cleaned, "\t")

	// The sanitizer drops every tag and re-escapes text, so entities are
	// unescaped once afterwards.
	cleaned = html.UnescapeString(stripPolicy.Sanitize(cleaned))

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		line = spacesRe.ReplaceAllStringFunc(line, func(s string) string {
			if strings.Contains(s, "\t") {
				return "\t"
			}
			return " "
		})
		lines[i] = strings.TrimSpace(line)
	}
	cleaned = strings.Join(lines, "\n")
	cleaned = blankLinesRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
