// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"time"

	"reportcheck/internal/document"
)

// Export is the top-level structure for JSON and YAML output.
type Export struct {
	Summary document.BatchSummary `json:"summary"`
	Reports []ExportReport        `json:"reports"`
}

// ExportReport is one document in JSON and YAML output.
type ExportReport struct {
	FileName     string                     `json:"file_name"`
	Path         string                     `json:"path"`
	Status       document.Status            `json:"status"`
	Tier         document.Tier              `json:"tier,omitempty"`
	Error        string                     `json:"error,omitempty"`
	ProcessingMs int64                      `json:"processing_ms"`
	Result       *document.ValidationResult `json:"result,omitempty"`
}

// ConvertReports builds the export structure. Per-page detail is kept
// only in verbose mode.
func ConvertReports(reports []document.DocumentReport, summary document.BatchSummary, verbose bool) Export {
	out := Export{Summary: summary, Reports: make([]ExportReport, 0, len(reports))}
	for _, r := range reports {
		result := r.Result
		if result != nil && !verbose {
			trimmed := *result
			trimmed.Pages = nil
			trimmed.Sections = nil
			result = &trimmed
		}
		out.Reports = append(out.Reports, ExportReport{
			FileName:     r.FileName,
			Path:         r.Path,
			Status:       r.Status,
			Tier:         r.Tier(),
			Error:        r.Error,
			ProcessingMs: ProcessingMs(r.Duration),
			Result:       result,
		})
	}
	return out
}

// ProcessingMs renders a duration in whole milliseconds.
func ProcessingMs(d time.Duration) int64 {
	return d.Milliseconds()
}
