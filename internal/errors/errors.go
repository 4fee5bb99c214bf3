// Package errors provides the coded error type used across sessionlog.
// Errors carry a category code, the failing operation and an optional cause,
// and support the standard errors.Is and errors.As helpers.
package errors

import (
	"errors"
	"fmt"
)

// Code represents error categories for classifying different types of failures.
type Code int

const (
	// Unknown indicates an unclassified error.
	Unknown Code = iota
	// Configuration indicates a configuration file could not be read or parsed.
	Configuration
	// Validation indicates a configuration value is out of range or missing.
	Validation
	// Usage indicates the API was called in the wrong state, e.g. Emit before Start.
	Usage
	// IO indicates a session file write failed.
	IO
	// Permission indicates the log directory or file could not be created.
	Permission
	// NotFound indicates a required file or directory does not exist.
	NotFound
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case Unknown:
		return "Unknown"
	case Configuration:
		return "Configuration"
	case Validation:
		return "Validation"
	case Usage:
		return "Usage"
	case IO:
		return "IO"
	case Permission:
		return "Permission"
	case NotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Code(%d)", c)
	}
}

// Error is a structured error with a code, message, operation and cause.
type Error struct {
	Code    Code   // Error category
	Message string // Human-readable error message
	Op      string // Operation that failed (e.g., "session.Start")
	Cause   error  // Underlying error, if any
}

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with additional context.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithOp sets the operation and returns the same error for chaining.
// Do not call it on the package sentinels; they are shared.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Error implements the error interface.
// The format varies based on whether Op and Cause are set:
//   - With Op and Cause: "op: message: cause"
//   - With Op only: "op: message"
//   - With Cause only: "message: cause"
//   - Message only: "message"
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns Unknown if the error is not an *Error type.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// Sentinel errors for matching with errors.Is.
var (
	// ErrNotStarted indicates a session operation was attempted with no active session.
	ErrNotStarted = New(Usage, "log session not started")
	// ErrFlushFailed indicates buffered data could not be written to the session file.
	ErrFlushFailed = New(IO, "flush to session file failed")
)

// NotStarted returns a fresh Usage error for op, matching ErrNotStarted.
func NotStarted(op string) *Error {
	return New(Usage, ErrNotStarted.Message).WithOp(op)
}
