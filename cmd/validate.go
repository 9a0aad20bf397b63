// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reportcheck/internal/config"
	"reportcheck/internal/document"
	"reportcheck/internal/formatters"
	"reportcheck/internal/parallel"

	// Import formatters to register them
	_ "reportcheck/internal/formatters/csv"
	_ "reportcheck/internal/formatters/json"
	_ "reportcheck/internal/formatters/text"
	_ "reportcheck/internal/formatters/yaml"
)

type validateOptions struct {
	format    string
	output    string
	workers   int
	recursive bool
	verbose   bool
	failUnder int
	quiet     bool
}

func newValidateCmd(a *app) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate PATH...",
		Short: "Validate report documents and print their scores",
		Long: `Validate one or more report documents. Directories are expanded to the
supported documents they contain (.pdf, .docx, .pages.json, .json).

The command exits with status 1 when a document could not be analyzed or
scored below --fail-under, and with status 2 when no document was found.

Examples:
  reportcheck validate report.pdf
  reportcheck validate --recursive --format csv --output results.csv reports/
  reportcheck validate --profile submission final.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, a, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "text", "output format: "+strings.Join(formatters.List(), ", "))
	flags.StringVarP(&opts.output, "output", "o", "", "write results to a file instead of stdout")
	flags.IntVar(&opts.workers, "workers", 0, "documents validated concurrently (0 = number of CPUs)")
	flags.BoolVarP(&opts.recursive, "recursive", "r", false, "descend into subdirectories")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "include per-section, table of contents and layout details")
	flags.IntVar(&opts.failUnder, "fail-under", 0, "exit with status 1 when a document scores below this value")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}

// applyFlags overrides the resolved settings with the flags given on the
// command line.
func (o *validateOptions) applyFlags(cmd *cobra.Command, settings config.Settings) (config.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		settings.Format = o.format
	}
	if flags.Changed("workers") {
		settings.Workers = o.workers
	}
	if flags.Changed("recursive") {
		settings.Recursive = o.recursive
	}
	if flags.Changed("verbose") {
		settings.Verbose = o.verbose
	}
	if flags.Changed("fail-under") {
		settings.FailUnder = o.failUnder
	}

	if settings.Format == "" {
		settings.Format = "text"
	}
	if _, ok := formatters.Get(settings.Format); !ok {
		return settings, fmt.Errorf("unsupported format '%s'. Available formats: %s",
			settings.Format, strings.Join(formatters.List(), ", "))
	}
	if settings.FailUnder < 0 || settings.FailUnder > 100 {
		return settings, fmt.Errorf("--fail-under must be between 0 and 100, got %d", settings.FailUnder)
	}
	if settings.Workers < 0 {
		return settings, fmt.Errorf("--workers must not be negative, got %d", settings.Workers)
	}
	return settings, nil
}

func runValidate(cmd *cobra.Command, a *app, opts *validateOptions, args []string) error {
	settings, err := opts.applyFlags(cmd, a.settings)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	showProgress := !opts.quiet && !settings.Debug && isTerminal(stderr)

	processor, err := a.newProcessor(settings, newProgressBar(stderr, showProgress))
	if err != nil {
		return err
	}

	reports, summary := processor.ProcessFiles(cmd.Context(), args)
	if len(reports) == 0 {
		return &exitError{code: 2, msg: "No supported documents found."}
	}

	// Files never carry color codes
	result, err := formatters.Format(settings.Format, reports, summary, formatters.FormatterOptions{
		Verbose: settings.Verbose,
		NoColor: settings.NoColor || opts.output != "",
	})
	if err != nil {
		return fmt.Errorf("formatting results: %w", err)
	}

	if opts.output != "" {
		if err := writeOutput(opts.output, result); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Results for %d documents written to %s\n", summary.Total, opts.output)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), result)
	}

	if failed := failingReports(reports, settings.FailUnder); failed > 0 {
		return &exitError{code: 1, msg: fmt.Sprintf("%d of %d documents failed validation", failed, summary.Total)}
	}
	return nil
}

// failingReports counts reports that errored or scored below failUnder.
func failingReports(reports []document.DocumentReport, failUnder int) int {
	failed := 0
	for _, r := range reports {
		if r.Status != document.StatusCompleted || r.Result == nil || r.Result.Score < failUnder {
			failed++
		}
	}
	return failed
}

// writeOutput writes result to path with owner-only permissions, creating
// the parent directory when needed.
func writeOutput(path, result string) error {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid output file path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(result+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// newProgressBar returns a progress callback drawing a bar with an ETA,
// or nil when progress output is disabled.
func newProgressBar(w io.Writer, enabled bool) parallel.ProgressCallback {
	if !enabled {
		return nil
	}
	start := time.Now()
	return func(completed, total int, currentFile string) {
		if total == 0 {
			return
		}
		const barWidth = 40
		filled := barWidth * completed / total
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		var eta string
		if completed > 0 && completed < total {
			remaining := time.Since(start) / time.Duration(completed) * time.Duration(total-completed)
			eta = fmt.Sprintf(" ETA: %s", remaining.Round(time.Second))
		}
		fmt.Fprintf(w, "\r[%s] %d/%d documents (%.1f%%)%s", bar, completed, total,
			float64(completed)/float64(total)*100, eta)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}

// isTerminal checks if w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
