// Package errors provides the pipeline's error taxonomy with context propagation.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a pipeline failure.
type ErrorType string

const (
	// TypeNotFound indicates a missing source directory or file
	TypeNotFound ErrorType = "not_found"
	// TypeMalformedRecord indicates a row or header missing a required column
	TypeMalformedRecord ErrorType = "malformed_record"
	// TypeIOWrite indicates a destination that could not be written
	TypeIOWrite ErrorType = "io_write"
	// TypeEmptyInput indicates an aggregate requested over zero scored records
	TypeEmptyInput ErrorType = "empty_input"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound creates a new not-found error.
func NotFound(message string, cause error) *Error {
	return newError(TypeNotFound, message, cause)
}

// MalformedRecord creates a new malformed-record error.
func MalformedRecord(message string) *Error {
	return newError(TypeMalformedRecord, message, nil)
}

// IOWrite creates a new write failure.
func IOWrite(message string, cause error) *Error {
	return newError(TypeIOWrite, message, cause)
}

// EmptyInput creates a new empty-input error.
func EmptyInput(message string) *Error {
	return newError(TypeEmptyInput, message, nil)
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Is reports whether any error in err's chain is a structured error of type t.
func Is(err error, t ErrorType) bool {
	var structuredErr *Error
	if !errors.As(err, &structuredErr) {
		return false
	}
	if structuredErr.Type == t {
		return true
	}
	return Is(structuredErr.Cause, t)
}

// TypeOf returns the type of the first structured error in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr.Type
	}
	return ""
}
