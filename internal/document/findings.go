// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

// IssueKind names the layout rule a LayoutIssue violates.
type IssueKind string

const (
	IssueMargin        IssueKind = "MARGIN"
	IssueCentering     IssueKind = "CENTERING"
	IssueTopMargin     IssueKind = "TOP_MARGIN"
	IssueJustification IssueKind = "JUSTIFICATION"
	IssueSpacing       IssueKind = "SPACING"
)

// Severity of a layout issue.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// LayoutIssue is a single layout deviation found on a page.
type LayoutIssue struct {
	Kind        IssueKind `json:"kind"`
	Message     string    `json:"message"`
	PageIndex   int       `json:"page_index"`
	Severity    Severity  `json:"severity"`
	BoundingBox *Rect     `json:"bounding_box,omitempty"`
}

// AnalyzedPage is a page after layout analysis. It is never mutated once built.
type AnalyzedPage struct {
	Index           int            `json:"index"`
	Fragments       []TextFragment `json:"-"`
	LayoutIssues    []LayoutIssue  `json:"layout_issues"`
	Warnings        []string       `json:"warnings"`
	HeadingCentered bool           `json:"heading_centered"`
	HeadingAtTop    bool           `json:"heading_at_top"`
}

// Text joins the page's fragment texts with single spaces.
func (p AnalyzedPage) Text() string {
	return JoinFragments(p.Fragments)
}

// HasErrors reports whether the page carries at least one ERROR-severity issue.
func (p AnalyzedPage) HasErrors() bool {
	for _, issue := range p.LayoutIssues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Confidence is the qualitative strength of a watermark detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// IdentifierValidation is the outcome of checking a registration number (RRN).
type IdentifierValidation struct {
	IsValid                   bool   `json:"is_valid"`
	DetectedValue             string `json:"detected_value,omitempty"`
	ExpectedFormatDescription string `json:"expected_format"`
	Message                   string `json:"message"`
	YearCode                  string `json:"year_code,omitempty"`
	OrgCode                   string `json:"org_code,omitempty"`
	SequenceNumber            string `json:"sequence_number,omitempty"`
}

// WatermarkInfo summarizes watermark detection for one document.
type WatermarkInfo struct {
	Present              bool                  `json:"present"`
	Confidence           Confidence            `json:"confidence"`
	Text                 string                `json:"text,omitempty"`
	PagesFound           []int                 `json:"pages_found"`
	SampledPages         []int                 `json:"sampled_pages"`
	IdentifierValidation *IdentifierValidation `json:"identifier_validation,omitempty"`
}

// IdentifierValid reports whether a structurally valid identifier was found.
func (w *WatermarkInfo) IdentifierValid() bool {
	return w != nil && w.IdentifierValidation != nil && w.IdentifierValidation.IsValid
}

// SectionReport details how one section rule was matched.
type SectionReport struct {
	Name            string   `json:"name"`
	Found           bool     `json:"found"`
	Optional        bool     `json:"optional"`
	PageIndex       int      `json:"page_index,omitempty"`
	ExpectedPages   string   `json:"expected_pages"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
	MissingPatterns []string `json:"missing_patterns,omitempty"`
	WordCount       int      `json:"word_count,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// TOCEntry is one line recovered from the table of contents.
type TOCEntry struct {
	Title       string `json:"title"`
	TOCPage     int    `json:"toc_page"`
	ActualIndex int    `json:"actual_index"`
	Valid       bool   `json:"valid"`
}

// TOCValidation is the advisory cross-check of table-of-contents references.
type TOCValidation struct {
	TOCPage        int        `json:"toc_page"`
	Offset         int        `json:"offset"`
	OffsetDetected bool       `json:"offset_detected"`
	Entries        []TOCEntry `json:"entries"`
}
