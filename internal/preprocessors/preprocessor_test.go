// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcheck/internal/document"
	"reportcheck/internal/observability"
	"reportcheck/internal/resilience"
)

type stubProvider struct {
	calls   int32
	extract func(ctx context.Context, attempt int32) (*document.Document, error)
}

func (s *stubProvider) Name() string                    { return "stub" }
func (s *stubProvider) SupportedExtensions() []string   { return []string{".stub"} }
func (s *stubProvider) CanProcess(filePath string) bool { return hasExtension(filePath, s.SupportedExtensions()) }
func (s *stubProvider) Extract(ctx context.Context, filePath string) (*document.Document, error) {
	return s.extract(ctx, atomic.AddInt32(&s.calls, 1))
}

func onePage() *document.Document {
	return &document.Document{FileName: "a.stub", HasLayout: true, Pages: []document.Page{{Number: 1}}}
}

func fastOptions() Options {
	return Options{Timeout: 50 * time.Millisecond, MaxRetries: 2}
}

func TestRouter(t *testing.T) {
	r := NewDefaultRouter(DefaultOptions())

	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", "pdf"},
		{"REPORT.PDF", "pdf"},
		{"dir/report.docx", "docx"},
		{"report.pages.json", "json"},
		{"report.json", "json"},
	}
	for _, tt := range tests {
		p, err := r.ProviderFor(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, p.Name(), tt.path)
		assert.True(t, r.Supports(tt.path))
	}

	_, err := r.ProviderFor("notes.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".txt")
	assert.False(t, resilience.IsRetryable(err))
	assert.False(t, r.Supports("archive"))

	assert.Equal(t, []string{".docx", ".json", ".pages.json", ".pdf"}, r.SupportedExtensions())
}

func TestExtractRetriesTransientFailures(t *testing.T) {
	stub := &stubProvider{extract: func(ctx context.Context, attempt int32) (*document.Document, error) {
		if attempt == 1 {
			return nil, resilience.NewTransientError("file busy", nil)
		}
		return onePage(), nil
	}}

	doc, err := Extract(context.Background(), NewRouter(stub), "a.stub", fastOptions(), observability.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, int32(2), stub.calls)
}

func TestExtractDoesNotRetryPermanentFailures(t *testing.T) {
	stub := &stubProvider{extract: func(ctx context.Context, attempt int32) (*document.Document, error) {
		return nil, errors.New("malformed xref table")
	}}

	_, err := Extract(context.Background(), NewRouter(stub), "a.stub", fastOptions(), nil)
	require.EqualError(t, err, "malformed xref table")
	assert.Equal(t, int32(1), stub.calls)
}

func TestExtractTimesOutHungProvider(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stub := &stubProvider{extract: func(ctx context.Context, attempt int32) (*document.Document, error) {
		<-release
		return onePage(), nil
	}}

	opts := Options{Timeout: 10 * time.Millisecond, MaxRetries: 1}
	start := time.Now()
	_, err := Extract(context.Background(), NewRouter(stub), "a.stub", opts, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.calls), "timeouts are retried")
}

func TestExtractRecoversProviderPanic(t *testing.T) {
	stub := &stubProvider{extract: func(ctx context.Context, attempt int32) (*document.Document, error) {
		panic("bad font dictionary")
	}}
	_, err := Extract(context.Background(), NewRouter(stub), "a.stub", fastOptions(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad font dictionary")
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract(context.Background(), NewDefaultRouter(DefaultOptions()), "slides.pptx", fastOptions(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestJSONProvider(t *testing.T) {
	dir := t.TempDir()
	src := document.Document{
		HasLayout: true,
		Pages: []document.Page{
			{Width: 595, Height: 842, Fragments: []document.TextFragment{{Text: "INTERNSHIP REPORT", X: 200, Y: 80, Width: 190, Height: 16}}},
			{Width: 595, Height: 842},
		},
	}
	data, err := json.Marshal(src)
	require.NoError(t, err)
	path := filepath.Join(dir, "thesis.pages.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	doc, err := Extract(context.Background(), NewDefaultRouter(DefaultOptions()), path, fastOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, "thesis", doc.FileName)
	assert.True(t, doc.HasLayout)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, "INTERNSHIP REPORT", doc.Pages[0].Text())

	_, err = DecodeDocument(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.False(t, resilience.IsRetryable(err))
}
