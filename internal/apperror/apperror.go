// Package apperror defines the error kinds surfaced by the configuration core.
//
// Every error returned across a package boundary wraps exactly one kind so
// callers can branch with errors.Is without inspecting messages.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds
var (
	// ErrNotFound means no active tenant, version or document exists where the
	// caller's contract requires one.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")
	// ErrConfigurationUnavailable means the backing store could not be read.
	ErrConfigurationUnavailable = errors.New("configuration unavailable")
	// ErrVersionConflict means a concurrent write superseded the caller's base.
	ErrVersionConflict = errors.New("version conflict")
	// ErrInternal marks defects such as an unparseable template.
	ErrInternal = errors.New("internal error")
)

// Error carries an operation name and a kind around an optional cause.
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an *Error of the given kind.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around err.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func NotFound(op, format string, args ...any) *Error {
	return New(ErrNotFound, op, format, args...)
}

func Validation(op, format string, args ...any) *Error {
	return New(ErrValidation, op, format, args...)
}

func Conflict(op, format string, args ...any) *Error {
	return New(ErrVersionConflict, op, format, args...)
}

func Unavailable(op string, err error) *Error {
	return Wrap(ErrConfigurationUnavailable, op, err)
}

func Internal(op string, err error) *Error {
	return Wrap(ErrInternal, op, err)
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ErrConfigurationUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show an API client. Internal and
// storage causes are not exposed.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case ErrNotFound, ErrValidation, ErrVersionConflict:
			if appErr.Message != "" {
				return appErr.Message
			}
		}
		return appErr.Kind.Error()
	}
	return "internal error"
}
