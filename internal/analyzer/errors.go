package analyzer

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies analyzer errors.
type ErrorKind string

const (
	// ErrorKindValidation indicates rejected input.
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindConfiguration indicates an invalid component configuration.
	ErrorKindConfiguration ErrorKind = "configuration"
	// ErrorKindModel indicates a rule table failed to load or compile.
	ErrorKindModel ErrorKind = "model"
	// ErrorKindClassification indicates a classification failure.
	ErrorKindClassification ErrorKind = "classification"
	// ErrorKindDetection indicates a detection failure.
	ErrorKindDetection ErrorKind = "detection"
	// ErrorKindCompilation indicates a remedy compilation failure.
	ErrorKindCompilation ErrorKind = "compilation"
	// ErrorKindTimeout indicates the analysis deadline or context expired.
	ErrorKindTimeout ErrorKind = "timeout"
)

// Error is a structured error from an analysis component.
type Error struct {
	Err       error
	Component string
	Kind      ErrorKind
	Message   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s error: %s", e.Component, e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a structured analyzer error wrapping err.
func NewError(component string, kind ErrorKind, err error) *Error {
	return &Error{
		Component: component,
		Kind:      kind,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewErrorf creates a structured analyzer error with a formatted message.
func NewErrorf(component string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Component: component,
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is an analyzer error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsValidationError reports whether err is an input validation error.
func IsValidationError(err error) bool {
	return IsKind(err, ErrorKindValidation)
}

// IsTimeoutError reports whether err is a timeout error.
func IsTimeoutError(err error) bool {
	return IsKind(err, ErrorKindTimeout)
}

// WrapError wraps an error with component context under the given kind.
// Structured errors pass through unchanged; context cancellation and
// deadline expiry map to the timeout kind regardless of kind.
func WrapError(component string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = ErrorKindTimeout
	}

	return NewError(component, kind, err)
}
