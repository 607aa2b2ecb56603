// Package errors provides structured error types for soundchunk.
//
// Library packages return sentinel errors wrapped with fmt.Errorf. This
// package gives those failures a machine-readable [Code] at the boundaries
// (HTTP API, CLI output) so callers can branch on the category without
// string matching.
//
// # Error Codes
//
// Codes group into families:
//   - structural graph errors: DANGLING_EDGE, DUPLICATE_ID, SELF_LOOP, ...
//   - lifecycle errors: AUDIO_LIFECYCLE, MISSING_DEPENDENCY
//   - request errors: INVALID_INPUT, NOT_FOUND
//   - INTERNAL_ERROR for everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown direction %q", dir)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	// Classify a validation failure from pkg/chunk
//	coded := errors.FromStructural(res.Err())
package errors

import (
	"errors"
	"fmt"

	"github.com/matzehuels/soundchunk/pkg/chunk"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural graph errors
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeDanglingEdge  Code = "DANGLING_EDGE"
	ErrCodeDuplicateID   Code = "DUPLICATE_ID"
	ErrCodeSelfLoop      Code = "SELF_LOOP"
	ErrCodeDuplicateEdge Code = "DUPLICATE_EDGE"

	// Lifecycle errors
	ErrCodeAudioLifecycle    Code = "AUDIO_LIFECYCLE"
	ErrCodeMissingDependency Code = "MISSING_DEPENDENCY"
	ErrCodeLayoutFailed      Code = "LAYOUT_FAILED"

	// Request errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsStructural reports whether err carries one of the structural graph codes.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidGraph, ErrCodeDanglingEdge, ErrCodeDuplicateID, ErrCodeSelfLoop, ErrCodeDuplicateEdge:
		return true
	}
	return false
}

// structuralCodes maps pkg/chunk sentinels to codes, most specific first.
var structuralCodes = []struct {
	sentinel error
	code     Code
}{
	{chunk.ErrDanglingEdge, ErrCodeDanglingEdge},
	{chunk.ErrDuplicateNodeID, ErrCodeDuplicateID},
	{chunk.ErrSelfLoop, ErrCodeSelfLoop},
	{chunk.ErrDuplicateEdge, ErrCodeDuplicateEdge},
}

// FromStructural classifies a validation error from [chunk.Validate].
// When the error joins several failures the first matching code in the
// order dangling edge, duplicate id, self-loop, duplicate edge wins; any
// other failure is reported as INVALID_GRAPH. Returns nil for nil.
func FromStructural(err error) *Error {
	if err == nil {
		return nil
	}
	for _, sc := range structuralCodes {
		if errors.Is(err, sc.sentinel) {
			return Wrap(sc.code, err, "graph rejected")
		}
	}
	return Wrap(ErrCodeInvalidGraph, err, "graph rejected")
}
