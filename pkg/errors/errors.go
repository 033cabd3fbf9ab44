// Package errors provides structured error types for rasterfold.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the CLI and the pipeline
//   - Machine-readable error codes for exit status selection
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_* / MISSING_*: Input validation failures (usage errors)
//   - FIELD_*: Attribute lookup failures while folding features
//   - IO_ERROR: Dataset open/read/write failures reported by GDAL
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingField, "--field is required for method %s", m)
//	if errors.IsUsage(err) {
//	    // print usage, exit 2
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "open raster %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidMethod Code = "INVALID_METHOD"
	ErrCodeMissingField  Code = "MISSING_FIELD"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Feature attribute errors
	ErrCodeFieldNotFound   Code = "FIELD_NOT_FOUND"
	ErrCodeFieldNotNumeric Code = "FIELD_NOT_NUMERIC"

	// Raster errors
	ErrCodeInvalidGeoTransform Code = "INVALID_GEOTRANSFORM"
	ErrCodeShapeMismatch       Code = "SHAPE_MISMATCH"

	// Dataset I/O errors
	ErrCodeIO Code = "IO_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// usageCodes are the codes reported before any dataset is opened.
var usageCodes = map[Code]bool{
	ErrCodeInvalidInput:  true,
	ErrCodeInvalidMethod: true,
	ErrCodeMissingField:  true,
	ErrCodeInvalidConfig: true,
}

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

// IsUsage reports whether err is a command-line validation error, i.e. one
// raised before any input was opened.
func IsUsage(err error) bool {
	return usageCodes[GetCode(err)]
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
