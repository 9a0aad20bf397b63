// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"

	"reportcheck/internal/document"
	textextractofficetextlib "reportcheck/internal/preprocessors/text-extractors/text-extract-officetextlib"
	textextractpdftextlib "reportcheck/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// PDFProvider extracts positioned text from PDF files.
type PDFProvider struct {
	maxPages int
}

// NewPDFProvider creates a PDF provider.
func NewPDFProvider(opts Options) *PDFProvider {
	return &PDFProvider{maxPages: opts.MaxPages}
}

// Name returns the name of this provider.
func (p *PDFProvider) Name() string { return "pdf" }

// SupportedExtensions returns the file extensions this provider supports.
func (p *PDFProvider) SupportedExtensions() []string { return []string{".pdf"} }

// CanProcess checks if this provider can handle the given file.
func (p *PDFProvider) CanProcess(filePath string) bool {
	return hasExtension(filePath, p.SupportedExtensions())
}

// Extract reads every page with its geometry.
func (p *PDFProvider) Extract(ctx context.Context, filePath string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return textextractpdftextlib.ExtractDocument(filePath, textextractpdftextlib.Options{MaxPages: p.maxPages})
}

// DocxProvider extracts body text from Word documents without geometry.
type DocxProvider struct{}

// NewDocxProvider creates a DOCX provider.
func NewDocxProvider() *DocxProvider {
	return &DocxProvider{}
}

// Name returns the name of this provider.
func (p *DocxProvider) Name() string { return "docx" }

// SupportedExtensions returns the file extensions this provider supports.
func (p *DocxProvider) SupportedExtensions() []string { return []string{".docx"} }

// CanProcess checks if this provider can handle the given file.
func (p *DocxProvider) CanProcess(filePath string) bool {
	return hasExtension(filePath, p.SupportedExtensions())
}

// Extract returns a single-page degraded document.
func (p *DocxProvider) Extract(ctx context.Context, filePath string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return textextractofficetextlib.ExtractDocument(filePath)
}
