// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"reportcheck/internal/document"
	"reportcheck/internal/formatters"
	"reportcheck/internal/formatters/shared"
)

// Header is the CSV header row.
var Header = []string{"Filename", "Status", "Score", "Tier", "Errors", "Warnings", "Pages", "Identifier Valid", "Processing Ms"}

// Formatter implements CSV output formatting.
type Formatter struct{}

// NewFormatter creates a new CSV formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import, one row per document"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(reports []document.DocumentReport, summary document.BatchSummary, options formatters.FormatterOptions) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return "", err
	}
	for _, r := range reports {
		if err := w.Write(f.createCSVRow(r)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// createCSVRow creates a CSV row for a report. Error messages go in the
// Errors column of failed documents.
func (f *Formatter) createCSVRow(r document.DocumentReport) []string {
	ms := strconv.FormatInt(shared.ProcessingMs(r.Duration), 10)
	if r.Status != document.StatusCompleted || r.Result == nil {
		return []string{
			sanitizeFormulaInjection(r.FileName),
			string(document.StatusError),
			"", "",
			sanitizeFormulaInjection(r.Error),
			"", "", "",
			ms,
		}
	}

	res := r.Result
	return []string{
		sanitizeFormulaInjection(r.FileName),
		string(r.Status),
		strconv.Itoa(res.Score),
		string(r.Tier()),
		sanitizeFormulaInjection(strings.Join(res.Errors, "; ")),
		sanitizeFormulaInjection(strings.Join(res.Warnings, "; ")),
		strconv.Itoa(res.PageCount),
		strconv.FormatBool(res.Watermark.IdentifierValid()),
		ms,
	}
}

// sanitizeFormulaInjection prevents CSV injection attacks by sanitizing formula characters.
func sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization.
func init() {
	formatters.Register(NewFormatter())
}
