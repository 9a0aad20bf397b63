// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"reportcheck/internal/document"
)

//go:embed schema.json
var ruleFileSchema []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// RuleFile is the YAML representation of a RuleSet. Patterns are plain
// regular expressions and are always compiled case-insensitive.
type RuleFile struct {
	Name       string               `yaml:"name,omitempty"`
	Sections   []SectionFile        `yaml:"sections,omitempty"`
	Chapters   []ChapterExpectation `yaml:"chapters,omitempty"`
	Layout     LayoutRules          `yaml:"layout"`
	Identifier IdentifierFormat     `yaml:"identifier"`
	Watermark  WatermarkFile        `yaml:"watermark"`
	TOC        TOCRules             `yaml:"toc"`
	Pages      PageLimits           `yaml:"pages"`
	Weights    Weights              `yaml:"weights"`
}

// SectionFile is the YAML form of a SectionRule.
type SectionFile struct {
	Name             string          `yaml:"name"`
	ExpectedPage     int             `yaml:"expected_page,omitempty"`
	PageRange        *PageRange      `yaml:"page_range,omitempty"`
	RequiredPatterns []string        `yaml:"required_patterns,omitempty"`
	OptionalPatterns []string        `yaml:"optional_patterns,omitempty"`
	Optional         bool            `yaml:"optional,omitempty"`
	WordCount        *WordCountRange `yaml:"word_count,omitempty"`
	Flags            []string        `yaml:"flags,omitempty"`
	Suggestions      []string        `yaml:"suggestions,omitempty"`
}

// WatermarkFile is the YAML form of WatermarkRules.
type WatermarkFile struct {
	LeadingPages   int      `yaml:"leading_pages"`
	MinOccurrences int      `yaml:"min_occurrences"`
	HighRatio      float64  `yaml:"high_ratio"`
	MediumRatio    float64  `yaml:"medium_ratio"`
	Keywords       []string `yaml:"keywords,omitempty"`
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rules.schema.json", bytes.NewReader(ruleFileSchema)); err != nil {
			compileErr = fmt.Errorf("failed to load rule file schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("rules.schema.json")
	})
	return compiledSchema, compileErr
}

// LoadFile reads and parses a YAML rule file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	return rs, nil
}

// Parse validates a YAML rule document against the rule file schema and
// overlays it on the default rule set. A non-empty sections list replaces
// the default sections entirely; every other block overrides field by field.
func Parse(data []byte) (*RuleSet, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validateAgainstSchema(raw); err != nil {
		return nil, err
	}

	file := ToFile(DefaultRuleSet())
	file.Sections = nil
	file.Chapters = nil
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid rule file: %w", err)
	}
	return file.Compile()
}

func validateAgainstSchema(raw any) error {
	s, err := schema()
	if err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees JSON-native types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("rule file is not representable as JSON: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("failed to decode rule file for validation: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("rule file does not match schema: %w", err)
	}
	return nil
}

// Compile turns the file form into a RuleSet and validates it.
func (f RuleFile) Compile() (*RuleSet, error) {
	defaults := DefaultRuleSet()
	rs := &RuleSet{
		Name:       f.Name,
		Sections:   defaults.Sections,
		Chapters:   defaults.Chapters,
		Layout:     f.Layout,
		Identifier: f.Identifier,
		TOC:        f.TOC,
		Pages:      f.Pages,
		Weights:    f.Weights,
		Watermark: WatermarkRules{
			LeadingPages:   f.Watermark.LeadingPages,
			MinOccurrences: f.Watermark.MinOccurrences,
			HighRatio:      f.Watermark.HighRatio,
			MediumRatio:    f.Watermark.MediumRatio,
			Keywords:       defaults.Watermark.Keywords,
		},
	}
	if rs.Name == "" {
		rs.Name = defaults.Name
	}
	if len(f.Chapters) > 0 {
		rs.Chapters = f.Chapters
	}
	if len(f.Watermark.Keywords) > 0 {
		kw, err := compileAll(f.Watermark.Keywords)
		if err != nil {
			return nil, fmt.Errorf("watermark keywords: %w", err)
		}
		rs.Watermark.Keywords = kw
	}
	if len(f.Sections) > 0 {
		sections := make([]SectionRule, 0, len(f.Sections))
		for _, sf := range f.Sections {
			s, err := sf.compile()
			if err != nil {
				return nil, err
			}
			sections = append(sections, s)
		}
		rs.Sections = sections
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (sf SectionFile) compile() (SectionRule, error) {
	required, err := compileAll(sf.RequiredPatterns)
	if err != nil {
		return SectionRule{}, fmt.Errorf("section %q required patterns: %w", sf.Name, err)
	}
	optional, err := compileAll(sf.OptionalPatterns)
	if err != nil {
		return SectionRule{}, fmt.Errorf("section %q optional patterns: %w", sf.Name, err)
	}
	for _, flag := range sf.Flags {
		if !document.IsFlag(flag) {
			return SectionRule{}, fmt.Errorf("section %q: unknown structure flag %q", sf.Name, flag)
		}
	}
	return SectionRule{
		Name:             sf.Name,
		ExpectedPage:     sf.ExpectedPage,
		PageRange:        sf.PageRange,
		RequiredPatterns: required,
		OptionalPatterns: optional,
		Optional:         sf.Optional,
		WordCount:        sf.WordCount,
		Flags:            sf.Flags,
		Suggestions:      sf.Suggestions,
	}, nil
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(`(?i)` + e)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", e, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func sources(patterns []*regexp.Regexp) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.TrimPrefix(p.String(), "(?i)")
	}
	return out
}

// ToFile converts a RuleSet to its YAML representation.
func ToFile(rs *RuleSet) RuleFile {
	f := RuleFile{
		Name:       rs.Name,
		Chapters:   rs.Chapters,
		Layout:     rs.Layout,
		Identifier: rs.Identifier,
		TOC:        rs.TOC,
		Pages:      rs.Pages,
		Weights:    rs.Weights,
		Watermark: WatermarkFile{
			LeadingPages:   rs.Watermark.LeadingPages,
			MinOccurrences: rs.Watermark.MinOccurrences,
			HighRatio:      rs.Watermark.HighRatio,
			MediumRatio:    rs.Watermark.MediumRatio,
			Keywords:       sources(rs.Watermark.Keywords),
		},
	}
	for _, s := range rs.Sections {
		f.Sections = append(f.Sections, SectionFile{
			Name:             s.Name,
			ExpectedPage:     s.ExpectedPage,
			PageRange:        s.PageRange,
			RequiredPatterns: sources(s.RequiredPatterns),
			OptionalPatterns: sources(s.OptionalPatterns),
			Optional:         s.Optional,
			WordCount:        s.WordCount,
			Flags:            s.Flags,
			Suggestions:      s.Suggestions,
		})
	}
	return f
}

// Marshal renders the rule set as YAML.
func Marshal(rs *RuleSet) ([]byte, error) {
	return yaml.Marshal(ToFile(rs))
}
