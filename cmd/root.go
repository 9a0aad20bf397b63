// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reportcheck/internal/config"
	"reportcheck/internal/core"
	"reportcheck/internal/observability"
	"reportcheck/internal/parallel"
	"reportcheck/internal/version"
)

// app holds the state resolved before any subcommand runs.
type app struct {
	configFile string
	profile    string
	rulesFile  string
	debug      bool
	noColor    bool

	cfg      *config.Config
	settings config.Settings
	observer *observability.StandardObserver
}

// logOperations is the annotation set on subcommands whose operations are
// logged to stderr even without --debug.
const logOperations = "log-operations"

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "reportcheck",
		Short: "Validate internship report documents against formatting and structure rules",
		Long: `reportcheck validates internship report documents (PDF, DOCX or page dumps)
against the institution's submission rules and scores them out of 100.

Each document is checked for:
  - Page count
  - Required and optional sections in their expected page windows
  - Table of contents entries that point at the right pages
  - A watermark carrying a valid student identifier
  - Heading placement and page layout`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./reportcheck.yaml or <user config dir>/reportcheck/config.yaml)")
	flags.StringVar(&a.profile, "profile", "", "configuration profile to apply")
	flags.StringVar(&a.rulesFile, "rules", "", "YAML rule file replacing the built-in rules")
	flags.BoolVar(&a.debug, "debug", false, "log every pipeline step to stderr")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newRulesCmd(a),
		newExplainCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// resolve loads the configuration and applies the profile and the
// persistent flags on top of it.
func (a *app) resolve(cmd *cobra.Command) error {
	cfg, err := config.LoadConfigOrDefault(a.configFile)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Using default configuration\n")
	}
	a.cfg = cfg

	settings, rulesFile, err := cfg.Effective(a.profile)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("rules") {
		a.rulesFile = rulesFile
	}
	if cmd.Flags().Changed("debug") {
		settings.Debug = a.debug
	}
	if cmd.Flags().Changed("no-color") {
		settings.NoColor = a.noColor
	}
	if settings.NoColor {
		color.NoColor = true
	}
	a.settings = settings

	level := observability.ObservabilityOff
	if cmd.Annotations[logOperations] == "true" {
		level = observability.ObservabilityMetrics
	}
	a.observer = a.newObserver(cmd.ErrOrStderr(), level)
	return nil
}

// newObserver builds the observer for the resolved settings. Debug mode
// adds indented step tracing on top of debug-level records.
func (a *app) newObserver(w io.Writer, level observability.ObservabilityLevel) *observability.StandardObserver {
	if a.settings.Debug {
		return observability.NewDebugObserver(w).StandardObserver
	}
	if level == observability.ObservabilityOff {
		return observability.Nop()
	}
	if f, ok := w.(*os.File); ok {
		return observability.NewObserverWithLogger(level, observability.NewConsoleLogger(f))
	}
	return observability.NewStandardObserver(level, w)
}

// newProcessor builds a batch processor for settings.
func (a *app) newProcessor(settings config.Settings, progress parallel.ProgressCallback) (*core.Processor, error) {
	rs, err := a.cfg.RuleSet(a.rulesFile)
	if err != nil {
		return nil, err
	}
	return core.NewProcessor(core.NewPipeline(rs, a.observer), nil, core.ProcessorConfig{
		Workers:    settings.Workers,
		Recursive:  settings.Recursive,
		Extraction: a.cfg.Extraction.Options(),
		Progress:   progress,
	}, a.observer), nil
}
