// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reportcheck/internal/rules"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule set as YAML",
		Long: `Print the rule set documents are validated against: the built-in rules, or
the rule file selected by --rules, the active profile or the config file.
The output is a valid rule file and can be edited and passed back with --rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.cfg.RuleSet(a.rulesFile)
			if err != nil {
				return err
			}
			data, err := rules.Marshal(rs)
			if err != nil {
				return fmt.Errorf("encoding rules: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
