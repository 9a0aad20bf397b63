// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"regexp"

	"reportcheck/internal/document"
)

// DefaultRuleSetName names the built-in internship report template.
const DefaultRuleSetName = "internship-report"

func ci(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, ci(e))
	}
	return out
}

// DefaultSections returns the ordered section rules of the internship report template.
func DefaultSections() []SectionRule {
	return []SectionRule{
		{
			Name:             "Cover Page",
			ExpectedPage:     1,
			RequiredPatterns: patterns(`INTERNSHIP REPORT`, `Submitted by`),
			OptionalPatterns: patterns(`Bachelor of Technology`, `Department of`),
			Flags:            []string{document.FlagCover},
			Suggestions: []string{
				"Put the report title in capital letters at the top of page 1",
				`Include the line "AN INTERNSHIP REPORT" below the title`,
				`Add "Submitted by" followed by the student name and RRN`,
				"Write the RRN as 12 digits, e.g. 230171601140",
			},
		},
		{
			Name:             "Bonafide Certificate",
			PageRange:        &PageRange{Start: 1, End: 2},
			RequiredPatterns: patterns(`BONAFIDE CERTIFICATE`, `Certified that this`, `Bonafide work`),
			Flags:            []string{document.FlagBonafide, document.FlagCertificate},
			Suggestions: []string{
				`Center the heading "BONAFIDE CERTIFICATE" at the top of the page`,
				`Start the body with "Certified that this internship report..."`,
				"Leave space for the supervisor and head of department signatures",
			},
		},
		{
			Name:             "Internship Certificate",
			PageRange:        &PageRange{Start: 2, End: 4},
			RequiredPatterns: patterns(`INTERNSHIP CERTIFICATE`),
			Optional:         true,
			Flags:            []string{document.FlagCertificate},
			Suggestions: []string{
				"Insert the certificate issued by the host organization after the bonafide certificate",
			},
		},
		{
			Name:             "Viva Voce",
			PageRange:        &PageRange{Start: 2, End: 5},
			RequiredPatterns: patterns(`VIVA VOCE`, `Internal Examiner`),
			OptionalPatterns: patterns(`External Examiner`),
			Flags:            []string{document.FlagVivaVoce},
			Suggestions: []string{
				`Add a viva voce page with "Internal Examiner" and "External Examiner" signature lines`,
			},
		},
		{
			Name:             "Acknowledgement",
			PageRange:        &PageRange{Start: 3, End: 6},
			RequiredPatterns: patterns(`ACKNOWLEDGE?MENT`),
			Flags:            []string{document.FlagAcknowledgment},
			Suggestions: []string{
				`Center the heading "ACKNOWLEDGEMENT" at the top of the page`,
			},
		},
		{
			Name:             "Table of Contents",
			PageRange:        &PageRange{Start: 4, End: 8},
			RequiredPatterns: patterns(`TABLE OF CONTENTS`, `\bCONTENTS\b`),
			OptionalPatterns: patterns(`CHAPTER`, `PAGE`),
			Flags:            []string{document.FlagTableOfContents},
			Suggestions: []string{
				`Title the page "TABLE OF CONTENTS"`,
				"List every chapter with its page number right-aligned",
			},
		},
		{
			Name:             "List of Abbreviations",
			PageRange:        &PageRange{Start: 5, End: 10},
			RequiredPatterns: patterns(`LIST OF ABBREVIATIONS`),
			Optional:         true,
			Flags:            []string{document.FlagAbbreviations},
		},
		{
			Name:             "List of Figures",
			PageRange:        &PageRange{Start: 5, End: 12},
			RequiredPatterns: patterns(`LIST OF FIGURES`),
			Optional:         true,
			Flags:            []string{document.FlagListOfFigures},
		},
		{
			Name:             "Abstract",
			PageRange:        &PageRange{Start: 6, End: 12},
			RequiredPatterns: patterns(`ABSTRACT`),
			WordCount:        &WordCountRange{Min: 100, Max: 500},
			Flags:            []string{document.FlagAbstract},
			Suggestions: []string{
				`Center the heading "ABSTRACT" at the top of the page`,
				"Keep the abstract between 150 and 300 words on a single page",
			},
		},
		{
			Name:             "Chapter 1 / Introduction",
			PageRange:        &PageRange{Start: 7, End: 15},
			RequiredPatterns: patterns(`CHAPTER\s*(1|I)\b`, `INTRODUCTION`),
			OptionalPatterns: patterns(`COMPANY'?S? PROFILE`),
			Flags:            []string{document.FlagIntroduction},
			Suggestions: []string{
				`Start chapter 1 with "CHAPTER 1" centered at the top of the page`,
				`Title it "COMPANY'S PROFILE" or "INTRODUCTION"`,
			},
		},
	}
}

// DefaultChapters returns the chapters the template expects at minimum.
func DefaultChapters() []ChapterExpectation {
	return []ChapterExpectation{
		{Number: 1, Title: "Introduction", Aliases: []string{"Company's Profile", "Company Profile"}},
		{Number: 2, Title: "Internship Activities", Aliases: []string{"Work Done", "Training"}},
		{Number: 3, Title: "System Design", Aliases: []string{"Methodology", "Technologies Used"}},
		{Number: 4, Title: "Implementation", Aliases: []string{"Results"}},
		{Number: 5, Title: "Conclusion", Aliases: []string{"Conclusion and Future Work", "Learning Outcomes"}},
	}
}

// DefaultRuleSet returns the built-in internship report template.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Name:     DefaultRuleSetName,
		Sections: DefaultSections(),
		Chapters: DefaultChapters(),
		Layout: LayoutRules{
			TopMarginThreshold:     150,
			CenteringTolerance:     20,
			BorderMargin:           50,
			MinorMarginSlack:       5,
			MajorMarginSlack:       20,
			MaxMinorMarginWarnings: 2,
			LineTolerance:          5,
			JustificationTolerance: 15,
			PagesChecked:           20,
		},
		Identifier: IdentifierFormat{
			Length:   12,
			YearMin:  20,
			YearMax:  25,
			OrgCodes: []string{"01716", "17160"},
			Example:  "230171601140",
		},
		Watermark: WatermarkRules{
			LeadingPages:   10,
			MinOccurrences: 3,
			HighRatio:      0.8,
			MediumRatio:    0.5,
			Keywords:       patterns(`confidential|draft|watermark|sample|copy|original|verified`),
		},
		TOC: TOCRules{
			SearchPages:     10,
			FooterScanPages: 15,
			FooterBand:      0.9,
			DefaultOffset:   6,
		},
		Pages: PageLimits{Minimum: 30, Recommended: 40},
		Weights: Weights{
			PageCount:  10,
			Structure:  35,
			Watermark:  15,
			Layout:     30,
			Formatting: 10,
		},
	}
}
