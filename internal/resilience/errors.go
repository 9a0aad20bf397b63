// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// ErrorType represents different types of errors for handling strategies.
type ErrorType int

const (
	ErrorTypeUnknown          ErrorType = iota
	ErrorTypeTransient                  // Temporary I/O conditions
	ErrorTypePermanent                  // Permissions, unsupported formats
	ErrorTypeTimeout                    // Per-attempt deadline hit
	ErrorTypeInvalidInput               // Malformed or corrupt documents
	ErrorTypeResourceNotFound           // Missing files
	ErrorTypeCanceled                   // Caller gave up
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypePermanent:
		return "Permanent"
	case ErrorTypeTimeout:
		return "Timeout"
	case ErrorTypeInvalidInput:
		return "InvalidInput"
	case ErrorTypeResourceNotFound:
		return "ResourceNotFound"
	case ErrorTypeCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// ClassifiedError wraps an error with type information.
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried.
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// ClassifyError categorizes an extraction error. Only transient I/O
// conditions and per-attempt timeouts are retryable.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &ClassifiedError{Original: err, Type: ErrorTypeCanceled}
	case errors.Is(err, context.DeadlineExceeded):
		return &ClassifiedError{Original: err, Type: ErrorTypeTimeout, Retryable: true}
	case errors.Is(err, fs.ErrNotExist):
		return &ClassifiedError{Original: err, Type: ErrorTypeResourceNotFound}
	case errors.Is(err, fs.ErrPermission):
		return &ClassifiedError{Original: err, Type: ErrorTypePermanent}
	case isTransientIO(err):
		return &ClassifiedError{Original: err, Type: ErrorTypeTransient, Retryable: true}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return &ClassifiedError{Original: err, Type: ErrorTypeTimeout, Retryable: true}
	case strings.Contains(errStr, "temporarily unavailable") || strings.Contains(errStr, "resource busy"):
		return &ClassifiedError{Original: err, Type: ErrorTypeTransient, Retryable: true}
	case strings.Contains(errStr, "malformed") || strings.Contains(errStr, "corrupt") ||
		strings.Contains(errStr, "invalid") || strings.Contains(errStr, "unexpected eof") ||
		strings.Contains(errStr, "not a valid zip"):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown}
}

func isTransientIO(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}

// NewTransientError creates a new transient error.
func NewTransientError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypeTransient,
		Message:   message,
		Retryable: true,
	}
}

// NewPermanentError creates a new permanent error.
func NewPermanentError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypePermanent,
		Message:   message,
		Retryable: false,
	}
}
