// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// StandardObserver records timed operations of the validation pipeline.
type StandardObserver struct {
	level         ObservabilityLevel
	logger        zerolog.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer writing JSON lines to writer.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return NewObserverWithLogger(level, zerolog.New(writer).With().Timestamp().Logger())
}

// NewObserverWithLogger creates an observer around an existing logger.
func NewObserverWithLogger(level ObservabilityLevel, logger zerolog.Logger) *StandardObserver {
	switch level {
	case ObservabilityOff:
		logger = zerolog.Nop()
	case ObservabilityMetrics:
		logger = logger.Level(zerolog.InfoLevel)
	default:
		logger = logger.Level(zerolog.DebugLevel)
	}
	return &StandardObserver{level: level, logger: logger}
}

// NewConsoleLogger returns a human-readable logger when w is a terminal
// and a JSON logger otherwise.
func NewConsoleLogger(w *os.File) zerolog.Logger {
	if term.IsTerminal(int(w.Fd())) {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Nop returns an observer that records nothing.
func Nop() *StandardObserver {
	return NewObserverWithLogger(ObservabilityOff, zerolog.Nop())
}

// Logger exposes the underlying logger for components that log directly.
func (o *StandardObserver) Logger() *zerolog.Logger {
	if o == nil {
		l := zerolog.Nop()
		return &l
	}
	return &o.logger
}

// Level returns the configured observability level.
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// StartTiming returns a function to complete timing.
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}
	if data.RequestID == "" {
		data.RequestID = uuid.NewString()
	}

	event := o.logger.Info()
	if !data.Success {
		event = o.logger.Warn()
	}
	event = event.
		Str("component", data.Component).
		Str("operation", data.Operation).
		Str("request_id", data.RequestID).
		Int64("duration_ms", data.DurationMs).
		Bool("success", data.Success)
	if data.FilePath != "" {
		event = event.Str("file_path", data.FilePath)
	}
	if data.Error != "" {
		event = event.Str("error", data.Error)
	}
	if len(data.Metadata) > 0 {
		event = event.Fields(data.Metadata)
	}
	event.Msg("operation")
}

// StandardObservabilityData for all components.
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
