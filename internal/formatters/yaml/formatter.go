// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"reportcheck/internal/document"
	"reportcheck/internal/formatters"
	"reportcheck/internal/formatters/shared"
)

// Formatter implements YAML output formatting.
type Formatter struct{}

// NewFormatter creates a new YAML formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML format output, same structure and keys as JSON"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

// Format goes through JSON first so the YAML keys and field order match
// the JSON output exactly.
func (f *Formatter) Format(reports []document.DocumentReport, summary document.BatchSummary, options formatters.FormatterOptions) (string, error) {
	export := shared.ConvertReports(reports, summary, options.Verbose)

	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	blockStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	return string(out), nil
}

// blockStyle drops the flow and quoting styles inherited from the JSON
// source. The encoder still quotes strings that would otherwise resolve
// to another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Register the formatter during package initialization.
func init() {
	formatters.Register(NewFormatter())
}
