// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"reportcheck/internal/help"
)

func newExplainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [SECTION]",
		Short: "Describe the sections a report must contain and how to fix them",
		Long: `Without arguments, list every section of the effective rule set with the page
it is expected on. With a section name (or a unique prefix of one), show the
patterns it is recognized by and suggestions for fixing it.

Examples:
  reportcheck explain
  reportcheck explain bonafide`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.cfg.RuleSet(a.rulesFile)
			if err != nil {
				return err
			}
			h := help.NewSystem(rs, cmd.OutOrStdout(), a.settings.NoColor)
			if len(args) == 0 {
				h.ShowSections()
				return nil
			}
			if !h.ShowSection(strings.Join(args, " ")) {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}
