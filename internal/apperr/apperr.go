// Package apperr defines the structured error kinds returned by every
// command and query. Handlers map kinds to HTTP status codes; services never
// return bare strings for business failures.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthorized           Kind = "unauthorized"
	KindNotFound               Kind = "not_found"
	KindValidation             Kind = "validation_error"
	KindInsufficientStock      Kind = "insufficient_stock"
	KindExcessReceipt          Kind = "excess_receipt"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindConcurrencyConflict    Kind = "concurrency_conflict"
	KindInfrastructure         Kind = "infrastructure_error"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindInfrastructure for anything that
// is not an *Error (unexpected store failures and the like).
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInfrastructure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Constructors for the common kinds.

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }
