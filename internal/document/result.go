// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"time"
)

// Structure flag names. Every ValidationResult carries all twelve.
const (
	FlagCover           = "hasCover"
	FlagBonafide        = "hasBonafide"
	FlagCertificate     = "hasCertificate"
	FlagVivaVoce        = "hasVivaVoce"
	FlagAcknowledgment  = "hasAcknowledgment"
	FlagTableOfContents = "hasTableOfContents"
	FlagAbbreviations   = "hasAbbreviations"
	FlagListOfFigures   = "hasListOfFigures"
	FlagAbstract        = "hasAbstract"
	FlagIntroduction    = "hasIntroduction"
	FlagConclusion      = "hasConclusion"
	FlagReferences      = "hasReferences"
)

// AllFlags lists the structure flags in display order.
var AllFlags = []string{
	FlagCover, FlagBonafide, FlagCertificate, FlagVivaVoce, FlagAcknowledgment,
	FlagTableOfContents, FlagAbbreviations, FlagListOfFigures, FlagAbstract,
	FlagIntroduction, FlagConclusion, FlagReferences,
}

// IsFlag reports whether name is one of the twelve structure flags.
func IsFlag(name string) bool {
	for _, f := range AllFlags {
		if f == name {
			return true
		}
	}
	return false
}

// StructureFlags maps each structure flag to whether it was satisfied.
type StructureFlags map[string]bool

// NewStructureFlags returns a map with every flag present and false.
func NewStructureFlags() StructureFlags {
	flags := make(StructureFlags, len(AllFlags))
	for _, f := range AllFlags {
		flags[f] = false
	}
	return flags
}

// ScoreBreakdown records the points each scoring category contributed.
type ScoreBreakdown struct {
	PageCount  float64 `json:"page_count"`
	Structure  float64 `json:"structure"`
	Watermark  float64 `json:"watermark"`
	Layout     float64 `json:"layout"`
	Formatting float64 `json:"formatting"`
}

// Total sums the category scores.
func (b ScoreBreakdown) Total() float64 {
	return b.PageCount + b.Structure + b.Watermark + b.Layout + b.Formatting
}

// ValidationResult is the final output of one validation run.
type ValidationResult struct {
	Score          int             `json:"score"`
	Breakdown      ScoreBreakdown  `json:"breakdown"`
	Errors         []string        `json:"errors"`
	Warnings       []string        `json:"warnings"`
	StructureFlags StructureFlags  `json:"structure"`
	Sections       []SectionReport `json:"sections,omitempty"`
	TOC            *TOCValidation  `json:"toc_validation,omitempty"`
	Watermark      *WatermarkInfo  `json:"watermark,omitempty"`
	Pages          []AnalyzedPage  `json:"pages,omitempty"`
	PageCount      int             `json:"page_count"`
	HasLayout      bool            `json:"has_layout"`
	FileName       string          `json:"file_name,omitempty"`
}

// Tier buckets a score for reporting.
type Tier string

const (
	TierPass    Tier = "Pass"
	TierWarning Tier = "Warning"
	TierFail    Tier = "Fail"
)

// TierFor returns the reporting tier for a score: Pass at 80 and above,
// Warning at 60 and above, Fail otherwise.
func TierFor(score int) Tier {
	switch {
	case score >= 80:
		return TierPass
	case score >= 60:
		return TierWarning
	default:
		return TierFail
	}
}

// Status of one document in a batch.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// DocumentReport is a batch entry: either a completed result or an error.
type DocumentReport struct {
	FileName string            `json:"file_name"`
	Path     string            `json:"path"`
	Status   Status            `json:"status"`
	Result   *ValidationResult `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

// Tier returns the report's tier, or an empty string when the document failed.
func (r DocumentReport) Tier() Tier {
	if r.Status != StatusCompleted || r.Result == nil {
		return ""
	}
	return TierFor(r.Result.Score)
}

// BatchSummary counts outcomes across a batch. Errored documents are
// counted separately from low-scoring ones.
type BatchSummary struct {
	BatchID      string  `json:"batch_id,omitempty"`
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	Passed       int     `json:"passed"`
	Warnings     int     `json:"warnings"`
	Failed       int     `json:"failed"`
	Errored      int     `json:"errored"`
	AverageScore float64 `json:"average_score"`
}

// Summarize builds a BatchSummary from reports.
func Summarize(reports []DocumentReport) BatchSummary {
	summary := BatchSummary{Total: len(reports)}
	total := 0
	for _, r := range reports {
		if r.Status != StatusCompleted || r.Result == nil {
			summary.Errored++
			continue
		}
		summary.Completed++
		total += r.Result.Score
		switch r.Tier() {
		case TierPass:
			summary.Passed++
		case TierWarning:
			summary.Warnings++
		default:
			summary.Failed++
		}
	}
	if summary.Completed > 0 {
		summary.AverageScore = float64(total) / float64(summary.Completed)
	}
	return summary
}
