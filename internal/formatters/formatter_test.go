// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"reportcheck/internal/core"
	"reportcheck/internal/document"
	"reportcheck/internal/formatters"
	_ "reportcheck/internal/formatters/csv"
	_ "reportcheck/internal/formatters/json"
	"reportcheck/internal/formatters/shared"
	_ "reportcheck/internal/formatters/text"
	_ "reportcheck/internal/formatters/yaml"
	"reportcheck/internal/testutil"
)

func batch(t *testing.T) ([]document.DocumentReport, document.BatchSummary) {
	t.Helper()
	p := core.NewPipeline(nil, nil)

	good, err := p.Validate(context.Background(), testutil.NewReport())
	require.NoError(t, err)
	short, err := p.Validate(context.Background(), testutil.NewReport(
		testutil.WithPages(29), testutil.WithoutSection(testutil.SectionViva)))
	require.NoError(t, err)

	reports := []document.DocumentReport{
		core.ReportFor("in/good.pdf", good, nil, 1500*time.Millisecond),
		core.ReportFor("in/broken.pdf", nil, assert.AnError, 20*time.Millisecond),
		core.ReportFor("in/short.pdf", short, nil, 900*time.Millisecond),
	}
	summary := document.Summarize(reports)
	summary.BatchID = "batch-1"
	return reports, summary
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())

	_, err := formatters.Format("sarif", nil, document.BatchSummary{}, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format 'sarif'")
	assert.Contains(t, err.Error(), "csv, json, text, yaml")

	info := formatters.GetFormatInfo("csv")
	assert.Equal(t, "text/csv", info.MimeType)
	assert.Equal(t, ".csv", info.Extension)
	assert.Equal(t, formatters.FormatInfo{}, formatters.GetFormatInfo("xml"))
	assert.Len(t, formatters.GetSupportedFormats(), 4)
}

func TestExportForWeb(t *testing.T) {
	reports, summary := batch(t)
	content, mime, name, err := formatters.ExportForWeb("yaml", reports, summary, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "application/x-yaml", mime)
	assert.Equal(t, "reportcheck-results.yaml", name)
	assert.NotEmpty(t, content)

	_, _, _, err = formatters.ExportForWeb("pdf", reports, summary, formatters.FormatterOptions{})
	assert.Error(t, err)
}

func TestCSV(t *testing.T) {
	reports, summary := batch(t)
	out, err := formatters.Format("csv", reports, summary, formatters.FormatterOptions{})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Filename,Status,Score,Tier,Errors,Warnings,Pages,Identifier Valid,Processing Ms", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "good.pdf,completed,95,Pass,,"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], ",35,true,1500"), lines[1])
	assert.Equal(t, "broken.pdf,error,,,Analysis failed: "+assert.AnError.Error()+",,,,20", lines[2])
	assert.Contains(t, lines[3], "Document is too short. 29 pages found, minimum 30 required.")
}

func TestCSVFormulaInjection(t *testing.T) {
	reports := []document.DocumentReport{{FileName: "=cmd.pdf", Status: document.StatusError, Error: "@x"}}
	out, err := formatters.Format("csv", reports, document.Summarize(reports), formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "'=cmd.pdf,error,,,'@x")
}

func TestJSON(t *testing.T) {
	reports, summary := batch(t)
	out, err := formatters.Format("json", reports, summary, formatters.FormatterOptions{})
	require.NoError(t, err)

	var export shared.Export
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	assert.Equal(t, summary, export.Summary)
	require.Len(t, export.Reports, 3)

	good := export.Reports[0]
	assert.Equal(t, document.TierPass, good.Tier)
	assert.Equal(t, int64(1500), good.ProcessingMs)
	require.NotNil(t, good.Result)
	assert.Equal(t, 95, good.Result.Score)
	assert.Nil(t, good.Result.Pages, "page detail is verbose only")

	assert.Nil(t, export.Reports[1].Result)
	assert.Empty(t, export.Reports[1].Tier)

	verbose, err := formatters.Format("json", reports, summary, formatters.FormatterOptions{Verbose: true})
	require.NoError(t, err)
	var full shared.Export
	require.NoError(t, json.Unmarshal([]byte(verbose), &full))
	assert.Len(t, full.Reports[0].Result.Pages, 35)
	assert.NotEmpty(t, full.Reports[0].Result.Sections)
}

func TestYAMLMatchesJSON(t *testing.T) {
	reports, summary := batch(t)
	jsonOut, err := formatters.Format("json", reports, summary, formatters.FormatterOptions{})
	require.NoError(t, err)
	yamlOut, err := formatters.Format("yaml", reports, summary, formatters.FormatterOptions{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(yamlOut, "summary:\n"), yamlOut[:40])
	assert.NotContains(t, yamlOut, `{"`)

	var fromJSON, fromYAML map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &fromJSON))
	require.NoError(t, yaml.Unmarshal([]byte(yamlOut), &fromYAML))

	// Re-encode through JSON so number types line up.
	normalized, err := json.Marshal(fromYAML)
	require.NoError(t, err)
	var roundTrip map[string]interface{}
	require.NoError(t, json.Unmarshal(normalized, &roundTrip))
	assert.Equal(t, fromJSON, roundTrip)
}

func TestText(t *testing.T) {
	reports, summary := batch(t)
	out, err := formatters.Format("text", reports, summary, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)

	assert.Contains(t, out, "good.pdf  [PASS] 95/100  (35 pages)")
	assert.Contains(t, out, "Breakdown: page count 5.0, structure 35.0, watermark 15.0, layout 30.0, formatting 10.0")
	assert.Contains(t, out, "Watermark: 230171601140 (HIGH confidence), identifier valid")
	assert.Contains(t, out, "  ! Document has 35 pages; at least 40 recommended.")
	assert.Contains(t, out, "broken.pdf  [ERROR]\n  Analysis failed: ")
	assert.Contains(t, out, "  ✗ Document is too short. 29 pages found, minimum 30 required.")
	assert.Contains(t, out, "Summary: 3 documents, ")
	assert.Contains(t, out, "1 errored")
	assert.NotContains(t, out, "\x1b[", "no escape codes with NoColor")
	assert.NotContains(t, out, "Sections:")

	verbose, err := formatters.Format("text", reports, summary, formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, verbose, "  Sections:\n")
	assert.Contains(t, verbose, "    ✓ Cover Page (page 1")
	assert.Contains(t, verbose, "  Table of contents (page 6, offset 7):")
}

func TestTextSingleAndEmpty(t *testing.T) {
	reports, summary := batch(t)
	out, err := formatters.Format("text", reports[:1], summary, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "Summary:")

	out, err = formatters.Format("text", nil, document.BatchSummary{}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "No documents found.", out)
}
