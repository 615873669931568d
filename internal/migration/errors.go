package migration

import (
	"errors"
	"fmt"
)

// Kind categorizes errors raised by the migration core.
type Kind string

const (
	// KindConfiguration indicates an unknown backend, a missing driver or a
	// ledger that does not exist yet.
	KindConfiguration Kind = "CONFIGURATION"

	// KindConnection indicates the backend was unreachable or rejected the
	// credentials.
	KindConnection Kind = "CONNECTION"

	// KindSequence indicates a non-contiguous change-set or a reverse target
	// outside the ledger's range.
	KindSequence Kind = "SEQUENCE"

	// KindExecution indicates a forward, backward or ledger statement failed.
	KindExecution Kind = "EXECUTION"
)

// Error is the single error type raised by the migration core.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// Version is the migration version involved, or 0 when not applicable.
	Version int64

	// Err is the wrapped backend error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped backend error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates an Error of KindConfiguration.
func NewConfigurationError(message string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Err: err}
}

// NewConnectionError creates an Error of KindConnection wrapping the driver error.
func NewConnectionError(message string, err error) *Error {
	return &Error{Kind: KindConnection, Message: message, Err: err}
}

// NewSequenceError creates an Error of KindSequence for the given version.
func NewSequenceError(version int64, message string) *Error {
	return &Error{Kind: KindSequence, Message: message, Version: version}
}

// NewExecutionError creates an Error of KindExecution wrapping the backend error.
func NewExecutionError(version int64, message string, err error) *Error {
	return &Error{Kind: KindExecution, Message: message, Version: version, Err: err}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool { return KindOf(err) == KindConfiguration }

// IsConnectionError reports whether err is a connection error.
func IsConnectionError(err error) bool { return KindOf(err) == KindConnection }

// IsSequenceError reports whether err is a sequence error.
func IsSequenceError(err error) bool { return KindOf(err) == KindSequence }

// IsExecutionError reports whether err is an execution error.
func IsExecutionError(err error) bool { return KindOf(err) == KindExecution }
