// Package errors provides structured error types for the layout engine and
// its host surfaces.
//
// Configuration faults (unknown layout type, clustering on a layout that
// cannot host it, unknown sizing or label mode) are returned as an [Error]
// with a machine-readable [Code] before any layout work starts. Data faults
// never become errors; they are logged and skipped by the builder.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - UNSUPPORTED_*: Valid values that cannot be combined
//   - NOT_FOUND / SESSION_NOT_FOUND: Missing resources
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLayoutType, "unknown layout type %q", tag)
//	if errors.Is(err, errors.ErrCodeInvalidLayoutType) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidOptions    Code = "INVALID_OPTIONS"
	ErrCodeInvalidLayoutType Code = "INVALID_LAYOUT_TYPE"
	ErrCodeInvalidSizingType Code = "INVALID_SIZING_TYPE"
	ErrCodeInvalidLabelType  Code = "INVALID_LABEL_TYPE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Combination errors
	ErrCodeUnsupportedClustering Code = "UNSUPPORTED_CLUSTERING"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Backend errors
	ErrCodeCache   Code = "CACHE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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
// For *Error types, returns the message and its causes without code
// prefixes. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsConfig reports whether err is a configuration fault: an invalid
// layout, sizing, label or options value, or an unsupported combination.
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidOptions, ErrCodeInvalidLayoutType, ErrCodeInvalidSizingType,
		ErrCodeInvalidLabelType, ErrCodeUnsupportedClustering:
		return true
	}
	return false
}
