// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcheck/internal/document"
)

func TestDefaultRuleSetIsValid(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Validate())
	assert.Equal(t, 100.0, rs.Weights.Sum())
	assert.Len(t, rs.Sections, 10)
	assert.Equal(t, 7, rs.RequiredSectionCount())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	rs := DefaultRuleSet()
	rs.Weights.Layout = 50
	err := rs.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWeights))
}

func TestValidateRejectsShortIdentifier(t *testing.T) {
	for _, length := range []int{0, 5, 7} {
		rs := DefaultRuleSet()
		rs.Identifier.Length = length
		err := rs.Validate()
		require.Error(t, err, "length %d", length)
		assert.Contains(t, err.Error(), "identifier length must be at least 8")
	}

	rs := DefaultRuleSet()
	rs.Identifier.Length = 8
	require.NoError(t, rs.Validate())
	assert.NotPanics(t, func() { ValidateIdentifier(rs.Identifier, "23017160") })
}

func TestSectionRuleWindow(t *testing.T) {
	cover := SectionRule{Name: "Cover", ExpectedPage: 1}
	start, end := cover.Window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
	assert.Equal(t, "page 1", cover.ExpectedLocation())
	assert.True(t, cover.Covers(1))
	assert.False(t, cover.Covers(2))

	abstract := SectionRule{Name: "Abstract", PageRange: &PageRange{Start: 6, End: 12}}
	assert.Equal(t, "pages 7-13", abstract.ExpectedLocation())
	assert.True(t, abstract.Covers(7))
	assert.True(t, abstract.Covers(13))
	assert.False(t, abstract.Covers(14))
}

func TestIsStructuralPage(t *testing.T) {
	rs := DefaultRuleSet()
	assert.True(t, rs.IsStructuralPage(1))
	assert.True(t, rs.IsStructuralPage(16))
	assert.False(t, rs.IsStructuralPage(17))
}

func TestValidateIdentifier(t *testing.T) {
	f := DefaultRuleSet().Identifier

	tests := []struct {
		name    string
		value   string
		valid   bool
		message string
	}{
		{"valid", "230171601140", true, "Valid RRN detected: 230171601140"},
		{"reordered org code", "231716001140", true, "Valid RRN detected: 231716001140"},
		{"year out of range", "190171601140", false, "Year code 19 is outside the accepted range 20-25"},
		{"eleven digits", "23999901140", false, "RRN must be exactly 12 digits, got 11"},
		{"unknown org", "239999011400", false, "Organization code 99990 is not recognized"},
		{"letters", "23017160114A", false, `RRN must contain only digits, found 'A'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateIdentifier(f, tt.value)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Equal(t, tt.message, got.Message)
			assert.NotEmpty(t, got.ExpectedFormatDescription)
		})
	}
}

func TestValidateIdentifierSplitsFields(t *testing.T) {
	got := ValidateIdentifier(DefaultRuleSet().Identifier, "230171601140")
	assert.Equal(t, "23", got.YearCode)
	assert.Equal(t, "01716", got.OrgCode)
	assert.Equal(t, "01140", got.SequenceNumber)
}

func TestExtractIdentifierCandidates(t *testing.T) {
	f := DefaultRuleSet().Identifier

	t.Run("prefers well formed tokens", func(t *testing.T) {
		text := "ref 999999999999 student 230171601140 again 230171601140"
		assert.Equal(t, []string{"230171601140"}, ExtractIdentifierCandidates(f, text))
	})

	t.Run("falls back to generic runs", func(t *testing.T) {
		text := "ids 190171601140 and 555555555555"
		assert.Equal(t, []string{"190171601140", "555555555555"}, ExtractIdentifierCandidates(f, text))
	})

	t.Run("ignores longer digit runs", func(t *testing.T) {
		assert.Empty(t, ExtractIdentifierCandidates(f, "phone 1234567890123"))
	})
}

func TestValidateText(t *testing.T) {
	f := DefaultRuleSet().Identifier

	got := ValidateText(f, "no numbers here")
	assert.False(t, got.IsValid)
	assert.Equal(t, "No 12-digit RRN found in document", got.Message)

	got = ValidateText(f, "190171601140 then 555555555555")
	assert.False(t, got.IsValid)
	assert.Equal(t, "190171601140", got.DetectedValue)

	got = ValidateText(f, "RRN: 220171601001")
	assert.True(t, got.IsValid)
}

func TestPartitionPatterns(t *testing.T) {
	cover := DefaultSections()[0]
	matched, missing := PartitionPatterns(cover.RequiredPatterns, "AN INTERNSHIP REPORT submitted to")
	assert.Equal(t, []string{"(?i)INTERNSHIP REPORT"}, matched)
	assert.Equal(t, []string{"(?i)Submitted by"}, missing)
	assert.True(t, MatchAny(cover.RequiredPatterns, "submitted BY someone"))
}

func TestDefaultFlagsAreKnown(t *testing.T) {
	for _, s := range DefaultSections() {
		for _, flag := range s.Flags {
			assert.True(t, document.IsFlag(flag), "section %s flag %s", s.Name, flag)
		}
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	data := []byte(`
name: strict
pages:
  minimum: 40
  recommended: 50
weights:
  page_count: 20
  structure: 30
  watermark: 10
  layout: 30
  formatting: 10
`)
	rs, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "strict", rs.Name)
	assert.Equal(t, 40, rs.Pages.Minimum)
	assert.Equal(t, 20.0, rs.Weights.PageCount)
	assert.Len(t, rs.Sections, 10)
	assert.Equal(t, 150.0, rs.Layout.TopMarginThreshold)
	assert.NotEmpty(t, rs.Watermark.Keywords)
}

func TestParseReplacesSections(t *testing.T) {
	data := []byte(`
sections:
  - name: Title Page
    expected_page: 1
    required_patterns: ["project report"]
    flags: [hasCover]
  - name: Summary
    page_range: {start: 1, end: 3}
    required_patterns: ["summary"]
    word_count: {min: 50, max: 200}
`)
	rs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, rs.Sections, 2)
	assert.True(t, rs.Sections[0].RequiredPatterns[0].MatchString("PROJECT REPORT"))
	assert.Equal(t, &PageRange{Start: 1, End: 3}, rs.Sections[1].PageRange)
	assert.Equal(t, 200, rs.Sections[1].WordCount.Max)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		is   error
	}{
		{"weights do not sum", "weights: {page_count: 10, structure: 10, watermark: 10, layout: 10, formatting: 10}", ErrInvalidWeights},
		{"unknown key", "colour: blue", nil},
		{"unknown flag", "sections: [{name: X, required_patterns: [x], flags: [hasNothing]}]", nil},
		{"bad regex", "sections: [{name: X, required_patterns: ['(']}]", nil},
		{"org code shape", "identifier: {org_codes: ['12']}", nil},
		{"required without patterns", "sections: [{name: X}]", nil},
		{"bad yaml", "sections: [", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(DefaultRuleSet())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRuleSet().Weights, rs.Weights)
	require.Len(t, rs.Sections, 10)
	assert.Equal(t, "Chapter 1 / Introduction", rs.Sections[9].Name)
	assert.True(t, MatchAny(rs.Sections[9].RequiredPatterns, "chapter 1 company profile"))
	assert.Equal(t, []string{document.FlagBonafide, document.FlagCertificate}, rs.Sections[1].Flags)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
