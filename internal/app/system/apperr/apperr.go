// internal/app/system/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller. The HTTP layer (outside this
// module) maps kinds to status codes: NotFound→404, BadRequest→400,
// Conflict→409, Internal→500.
type Kind int

const (
	// NotFound means a referenced document does not exist.
	NotFound Kind = iota + 1
	// BadRequest means the request violates a business rule
	// (rank conflict, invalid status token, nothing to update).
	BadRequest
	// Conflict means the request collides with existing state
	// (duplicate committee, phone already registered).
	Conflict
	// Internal means an unexpected persistence or collaborator failure,
	// including a transaction that could not commit.
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case BadRequest:
		return "bad request"
	case Conflict:
		return "conflict"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// Error carries a kind, a caller-facing message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, &apperr.Error{Kind: NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// New builds an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or Internal for errors that carry none.
// A nil error has no kind and returns 0.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsNotFound reports whether err is classified NotFound.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// IsBadRequest reports whether err is classified BadRequest.
func IsBadRequest(err error) bool { return KindOf(err) == BadRequest }

// IsConflict reports whether err is classified Conflict.
func IsConflict(err error) bool { return KindOf(err) == Conflict }
