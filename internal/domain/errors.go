package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures by how the session reacts to them
type ErrorKind string

const (
	// KindStartupFailure is fatal: the process exits before the TUI starts
	KindStartupFailure ErrorKind = "STARTUP_FAILURE"
	// KindSearchExecutionFailure moves the session into the Error state
	KindSearchExecutionFailure ErrorKind = "SEARCH_EXECUTION_FAILURE"
	// KindMalformedOutputLine is skipped silently by the result parser
	KindMalformedOutputLine ErrorKind = "MALFORMED_OUTPUT_LINE"
)

// Error is a classified failure with an optional cause
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface. Only the message is shown so that
// git's own text reaches the user unchanged.
func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// NewStartupError builds a KindStartupFailure error
func NewStartupError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindStartupFailure, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewSearchError builds a KindSearchExecutionFailure error
func NewSearchError(cause error, message string) *Error {
	return &Error{Kind: KindSearchExecutionFailure, Message: message, Cause: cause}
}

// ErrStartup and ErrSearch are kind sentinels for errors.Is
var (
	ErrStartup = &Error{Kind: KindStartupFailure}
	ErrSearch  = &Error{Kind: KindSearchExecutionFailure}
)

// IsStartupFailure reports whether err is a fatal startup error
func IsStartupFailure(err error) bool {
	return errors.Is(err, ErrStartup)
}

// IsSearchFailure reports whether err is a recoverable search error
func IsSearchFailure(err error) bool {
	return errors.Is(err, ErrSearch)
}

// KindOf returns the kind of err, or "" when err is not classified
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
