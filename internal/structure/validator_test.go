// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcheck/internal/document"
	"reportcheck/internal/layout"
	"reportcheck/internal/rules"
	"reportcheck/internal/testutil"
)

func analyze(t *testing.T, doc *document.Document) []document.AnalyzedPage {
	t.Helper()
	pages, _ := layout.NewAnalyzer(rules.DefaultRuleSet()).Analyze(doc)
	return pages
}

func textPages(texts ...string) []document.AnalyzedPage {
	pages := make([]document.AnalyzedPage, len(texts))
	for i, t := range texts {
		pages[i] = document.AnalyzedPage{Index: i + 1, Fragments: []document.TextFragment{{Text: t}}}
	}
	return pages
}

func TestValidateCompleteReport(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())
	res := v.Validate(analyze(t, testutil.NewReport()))

	assert.Empty(t, res.SectionErrors)
	assert.Empty(t, res.ChapterErrors)
	assert.Empty(t, res.ChapterWarnings)
	assert.Zero(t, res.Failures)
	assert.Equal(t, []string{
		`Optional Section "List of Abbreviations" not found.`,
		`Optional Section "List of Figures" not found.`,
	}, res.SectionWarnings)

	for _, flag := range document.AllFlags {
		want := flag != document.FlagAbbreviations && flag != document.FlagListOfFigures
		assert.Equal(t, want, res.Flags[flag], flag)
	}

	require.Len(t, res.Sections, 10)
	cover := res.Sections[0]
	assert.True(t, cover.Found)
	assert.Equal(t, 1, cover.PageIndex)
	assert.Contains(t, cover.MatchedPatterns, "(?i)Submitted by")
	assert.Empty(t, cover.Suggestions)

	abstract := res.Sections[8]
	assert.Equal(t, 7, abstract.PageIndex)
	assert.GreaterOrEqual(t, abstract.WordCount, 100)
}

func TestValidateMissingSections(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())
	doc := testutil.NewReport(
		testutil.WithoutSection(testutil.SectionBonafide),
		testutil.WithoutSection(testutil.SectionAbstract),
		testutil.WithoutSection(testutil.SectionCertificate),
	)
	res := v.Validate(analyze(t, doc))

	assert.Equal(t, 2, res.Failures)
	assert.Equal(t, []string{
		`Missing Section: "Bonafide Certificate". Expected around pages 2-3.`,
		`Missing Section: "Abstract". Expected around pages 7-13.`,
	}, res.SectionErrors)
	assert.Contains(t, res.SectionWarnings, `Optional Section "Internship Certificate" not found.`)
	assert.False(t, res.Flags[document.FlagBonafide])
	assert.False(t, res.Flags[document.FlagCertificate])
	assert.NotEmpty(t, res.Sections[1].Suggestions)
}

func TestValidateCertificateFlagFromEitherSection(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())
	res := v.Validate(analyze(t, testutil.NewReport(testutil.WithoutSection(testutil.SectionBonafide))))
	assert.False(t, res.Flags[document.FlagBonafide])
	assert.True(t, res.Flags[document.FlagCertificate])
}

func TestValidateExpectedPageBeyondDocument(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())
	res := v.Validate(nil)
	require.NotEmpty(t, res.SectionErrors)
	assert.Equal(t, `Missing Page: "Cover Page" expected on page 1, but the document has only 0 pages.`, res.SectionErrors[0])
	assert.Equal(t, 7, res.Failures)
}

func TestValidateWordCountRange(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())
	pages := textPages("AN INTERNSHIP REPORT", "", "", "", "", "", "ABSTRACT too short")
	res := v.Validate(pages)
	assert.Contains(t, res.SectionWarnings, `Section "Abstract" on page 7 has 3 words; expected between 100 and 500.`)
}

func TestValidateClosingSections(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())

	res := v.Validate(textPages("nothing here"))
	assert.Contains(t, res.SectionWarnings, "Conclusion section not found.")
	assert.Contains(t, res.SectionWarnings, "References or bibliography section not found.")

	res = v.Validate(textPages("intro", "Summary of work", "Bibliography"))
	assert.True(t, res.Flags[document.FlagConclusion])
	assert.True(t, res.Flags[document.FlagReferences])
	assert.NotContains(t, res.SectionWarnings, "Conclusion section not found.")
}

func TestChapterSequencing(t *testing.T) {
	v := NewValidator(rules.DefaultRuleSet())

	t.Run("gap", func(t *testing.T) {
		res := v.Validate(textPages("CHAPTER 1", "CHAPTER 2", "CHAPTER 3", "CHAPTER 5"))
		assert.Empty(t, res.ChapterErrors)
		assert.Contains(t, res.ChapterWarnings, "Chapter Gap: Chapter 5 found after Chapter 3. Missing Chapter 4?")
	})

	t.Run("out of order", func(t *testing.T) {
		res := v.Validate(textPages("CHAPTER 1", "CHAPTER 3", "CHAPTER 2"))
		assert.Equal(t, []string{"Chapter Sequence Error: Chapter 2 found on page 3 after Chapter 3."}, res.ChapterErrors)
		assert.Contains(t, res.ChapterWarnings, "Chapter Gap: Chapter 3 found after Chapter 1. Missing Chapter 2?")
	})

	t.Run("repeated heading is not an error", func(t *testing.T) {
		res := v.Validate(textPages("chapter 1", "Chapter 1 continued", "CHAPTER 2"))
		assert.Empty(t, res.ChapterErrors)
		require.Len(t, res.Chapters, 3)
		assert.Equal(t, ChapterMatch{Number: 2, Page: 3}, res.Chapters[2])
	})

	t.Run("too few chapters", func(t *testing.T) {
		res := v.Validate(textPages("CHAPTER 1", "CHAPTER 2"))
		assert.Contains(t, res.ChapterWarnings, "Only 2 chapter(s) found; at least 5 expected.")
	})

	t.Run("full report", func(t *testing.T) {
		res := v.Validate(analyze(t, testutil.NewReport(testutil.WithChapters(1, 3, 2, 4, 5))))
		assert.Len(t, res.ChapterErrors, 1)
	})
}

func TestResultAccessors(t *testing.T) {
	r := &Result{
		SectionErrors:   []string{"a"},
		ChapterErrors:   []string{"b"},
		SectionWarnings: []string{"c"},
		ChapterWarnings: []string{"d"},
	}
	assert.Equal(t, []string{"a", "b"}, r.Errors())
	assert.Equal(t, []string{"c", "d"}, r.Warnings())
}
