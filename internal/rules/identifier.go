// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"reportcheck/internal/document"
)

// ValidateIdentifier checks value against the registration number format.
// Checks run in order (length, digits, year code, organization code) and
// the first failure is reported.
func ValidateIdentifier(f IdentifierFormat, value string) document.IdentifierValidation {
	value = strings.TrimSpace(value)
	result := document.IdentifierValidation{
		DetectedValue:             value,
		ExpectedFormatDescription: f.Description(),
	}

	if len(value) != f.Length {
		result.Message = fmt.Sprintf("RRN must be exactly %d digits, got %d", f.Length, len(value))
		return result
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			result.Message = fmt.Sprintf("RRN must contain only digits, found %q", r)
			return result
		}
	}

	result.YearCode = value[0:2]
	result.OrgCode = value[2:7]
	result.SequenceNumber = value[7:]

	year, _ := strconv.Atoi(result.YearCode)
	if year < f.YearMin || year > f.YearMax {
		result.Message = fmt.Sprintf("Year code %s is outside the accepted range %d-%d", result.YearCode, f.YearMin, f.YearMax)
		return result
	}
	if !f.knownOrg(result.OrgCode) {
		result.Message = fmt.Sprintf("Organization code %s is not recognized", result.OrgCode)
		return result
	}

	result.IsValid = true
	result.Message = fmt.Sprintf("Valid RRN detected: %s", value)
	return result
}

func (f IdentifierFormat) knownOrg(code string) bool {
	for _, c := range f.OrgCodes {
		if c == code {
			return true
		}
	}
	return false
}

// strictPattern matches year code + organization code + roll number.
func (f IdentifierFormat) strictPattern() *regexp.Regexp {
	years := make([]string, 0, f.YearMax-f.YearMin+1)
	for y := f.YearMin; y <= f.YearMax; y++ {
		years = append(years, fmt.Sprintf("%02d", y))
	}
	orgs := make([]string, 0, len(f.OrgCodes))
	for _, o := range f.OrgCodes {
		orgs = append(orgs, regexp.QuoteMeta(o))
	}
	tail := f.Length - 7
	if tail < 1 {
		tail = 1
	}
	return regexp.MustCompile(fmt.Sprintf(`\b((?:%s)(?:%s)\d{%d,%d})\b`,
		strings.Join(years, "|"), strings.Join(orgs, "|"), max(tail-1, 0), tail))
}

// genericPattern matches any run of exactly Length digits.
func (f IdentifierFormat) genericPattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`\b\d{%d}\b`, f.Length))
}

// ExtractIdentifierCandidates returns the identifier-like tokens in text.
// Tokens shaped like a real registration number are preferred; when none
// exist any run of Length digits is returned as a weaker candidate set.
// Order of first appearance is preserved and duplicates are dropped.
func ExtractIdentifierCandidates(f IdentifierFormat, text string) []string {
	if matches := f.strictPattern().FindAllString(text, -1); len(matches) > 0 {
		return dedupe(matches)
	}
	return dedupe(f.genericPattern().FindAllString(text, -1))
}

// ValidateText extracts candidates from text and returns the first valid
// one. When no candidate is valid the first candidate's failure is returned.
func ValidateText(f IdentifierFormat, text string) document.IdentifierValidation {
	candidates := ExtractIdentifierCandidates(f, text)
	if len(candidates) == 0 {
		return document.IdentifierValidation{
			ExpectedFormatDescription: f.Description(),
			Message:                   fmt.Sprintf("No %d-digit RRN found in document", f.Length),
		}
	}
	var first document.IdentifierValidation
	for i, c := range candidates {
		v := ValidateIdentifier(f, c)
		if v.IsValid {
			return v
		}
		if i == 0 {
			first = v
		}
	}
	return first
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
