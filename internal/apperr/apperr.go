// Package apperr defines the coded errors the engine reports to callers.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeInvalidPhase     Code = "invalid_phase"
	CodeNotEnoughPlayers Code = "not_enough_players"
	CodeUnknownAction    Code = "unknown_action"
	CodeInvalidInput     Code = "invalid_input"
	CodeNotFound         Code = "not_found"
	CodeForbidden        Code = "forbidden"
	CodeAlreadyScored    Code = "already_scored"
	CodePluginFailure    Code = "plugin_failure"
	CodeInternal         Code = "internal"
)

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Message safe to show to the caller
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCoded reports whether err carries a domain code.
func IsCoded(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// Public returns the message that may be shown to a client. Uncoded errors
// collapse to a generic message.
func Public(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	switch e.Code {
	case CodePluginFailure, CodeInternal:
		return e.Message
	}
	return e.Error()
}

// HTTPStatus maps a code to the status a handler responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidPhase, CodeAlreadyScored:
		return http.StatusConflict
	case CodeNotEnoughPlayers, CodeUnknownAction, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
