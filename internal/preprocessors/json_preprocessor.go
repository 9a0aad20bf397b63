// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"reportcheck/internal/document"
)

// JSONProvider loads a serialized document.Document. External extraction
// tools and test fixtures use it to feed pages straight into validation.
type JSONProvider struct{}

// NewJSONProvider creates a page-dump provider.
func NewJSONProvider() *JSONProvider {
	return &JSONProvider{}
}

// Name returns the name of this provider.
func (p *JSONProvider) Name() string { return "json" }

// SupportedExtensions returns the file extensions this provider supports.
func (p *JSONProvider) SupportedExtensions() []string { return []string{".pages.json", ".json"} }

// CanProcess checks if this provider can handle the given file.
func (p *JSONProvider) CanProcess(filePath string) bool {
	return hasExtension(filePath, p.SupportedExtensions())
}

// Extract decodes the page dump.
func (p *JSONProvider) Extract(ctx context.Context, filePath string) (*document.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := DecodeDocument(f)
	if err != nil {
		return nil, err
	}
	if doc.FileName == "" {
		doc.FileName = strings.TrimSuffix(filepath.Base(filePath), ".pages.json")
	}
	return doc, nil
}

// DecodeDocument reads a page dump. Missing page numbers are filled in
// from position.
func DecodeDocument(r io.Reader) (*document.Document, error) {
	var doc document.Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid page dump: %w", err)
	}
	for i := range doc.Pages {
		if doc.Pages[i].Number == 0 {
			doc.Pages[i].Number = i + 1
		}
	}
	return &doc, nil
}
