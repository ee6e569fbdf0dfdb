// Package errors provides structured error types for the Glost engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - CYCLE_DETECTED / MISSING_EXTENSION: Dependency resolution failures
//   - MISSING_DEPENDENCY / EXTENSION_FAILED: Failures raised while an
//     extension executes
//   - NETWORK_* / TIMEOUT: Data-provider failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCycle, "dependency cycle through %q", id)
//	if errors.Is(err, errors.ErrCodeCycle) {
//	    // Handle resolution error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "lookup %q", word)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidExtension Code = "INVALID_EXTENSION"
	ErrCodeInvalidPolicy    Code = "INVALID_POLICY"
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"

	// Dependency resolution errors (fatal, nothing executes)
	ErrCodeCycle            Code = "CYCLE_DETECTED"
	ErrCodeMissingExtension Code = "MISSING_EXTENSION"

	// Execution errors (scoped to one extension, policy-dependent)
	ErrCodeMissingDependency Code = "MISSING_DEPENDENCY"
	ErrCodeExtensionFailed   Code = "EXTENSION_FAILED"
	ErrCodeConflict          Code = "CONFLICT"

	// Data-provider errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeTimeout  Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// MissingDependency creates the typed failure an enhancer raises when a
// field it requires has not been written by any prior extension. The
// orchestrator treats it like any other extension failure for policy
// purposes but keeps the field name for reports.
func MissingDependency(field string) *Error {
	return New(ErrCodeMissingDependency, "required field %q is absent", field)
}

// IsMissingDependency reports whether err is a missing-dependency failure.
func IsMissingDependency(err error) bool {
	return Is(err, ErrCodeMissingDependency)
}
