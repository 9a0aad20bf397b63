// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reportcheck/internal/document"
	"reportcheck/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Validate documents as they are written into a directory",
		Long: `Watch DIR and validate every supported document that is created or
modified in it, printing one line per document. Stop with Ctrl+C.

Examples:
  reportcheck watch ./submissions
  reportcheck watch --debounce 2s ./submissions`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{logOperations: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			processor, err := a.newProcessor(a.settings, nil)
			if err != nil {
				return err
			}
			w, err := watch.New(args[0], processor, debounce, a.observer)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for documents (Ctrl+C to stop)\n", w.Dir())
			return w.Run(cmd.Context(), func(report document.DocumentReport) {
				fmt.Fprintln(out, reportLine(report))
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a changed document is validated")
	return cmd
}

// reportLine renders a one-line outcome for a document.
func reportLine(r document.DocumentReport) string {
	if r.Status != document.StatusCompleted || r.Result == nil {
		return fmt.Sprintf("%s  %s", color.RedString("[ERROR]"), joinName(r.FileName, r.Error))
	}

	tier := r.Tier()
	label := fmt.Sprintf("[%s]", strings.ToUpper(string(tier)))
	switch tier {
	case document.TierPass:
		label = color.GreenString(label)
	case document.TierWarning:
		label = color.YellowString(label)
	default:
		label = color.RedString(label)
	}
	return fmt.Sprintf("%s %3d/100  %s  (%d errors, %d warnings)",
		label, r.Result.Score, r.FileName, len(r.Result.Errors), len(r.Result.Warnings))
}

func joinName(name, msg string) string {
	if msg == "" {
		return name
	}
	return name + ": " + msg
}
