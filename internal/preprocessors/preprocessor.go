// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocessors is the extraction boundary: providers turn a file
// on disk into a document.Document of positioned text fragments.
package preprocessors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"reportcheck/internal/document"
	"reportcheck/internal/resilience"
)

// ErrUnsupportedFormat is returned when no provider handles a file's extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Provider extracts a document from a file.
type Provider interface {
	// Name returns the name of this provider
	Name() string

	// CanProcess checks if this provider can handle the given file
	CanProcess(filePath string) bool

	// SupportedExtensions returns the lower-case extensions handled, with the leading dot
	SupportedExtensions() []string

	// Extract reads the file into pages of positioned text
	Extract(ctx context.Context, filePath string) (*document.Document, error)
}

// Router selects a provider by file extension.
type Router struct {
	providers []Provider
}

// NewRouter creates a router over providers, consulted in order.
func NewRouter(providers ...Provider) *Router {
	return &Router{providers: providers}
}

// NewDefaultRouter registers the PDF, DOCX and JSON page-dump providers.
func NewDefaultRouter(opts Options) *Router {
	return NewRouter(
		NewPDFProvider(opts),
		NewDocxProvider(),
		NewJSONProvider(),
	)
}

// Register adds a provider after the existing ones.
func (r *Router) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Providers returns the registered providers.
func (r *Router) Providers() []Provider {
	return r.providers
}

// ProviderFor returns the first provider that can handle filePath.
func (r *Router) ProviderFor(filePath string) (Provider, error) {
	for _, p := range r.providers {
		if p.CanProcess(filePath) {
			return p, nil
		}
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		ext = "(none)"
	}
	return nil, resilience.NewPermanentError(
		fmt.Sprintf("%s: %s", ErrUnsupportedFormat.Error(), ext), ErrUnsupportedFormat)
}

// Supports reports whether some provider handles filePath.
func (r *Router) Supports(filePath string) bool {
	_, err := r.ProviderFor(filePath)
	return err == nil
}

// SupportedExtensions lists every extension handled, sorted.
func (r *Router) SupportedExtensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, p := range r.providers {
		for _, ext := range p.SupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

func hasExtension(filePath string, exts []string) bool {
	lower := strings.ToLower(filePath)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
