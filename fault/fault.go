// Package fault classifies domain errors so the transport layer can map them
// to response codes without importing every domain package.
package fault

import (
	"errors"
	"fmt"
)

// Kind buckets an error by what the caller can do about it.
type Kind int

const (
	// Unexpected covers storage and infrastructure failures.
	Unexpected Kind = iota
	// Validation means the request was malformed; the caller fixes the request.
	Validation
	// Unauthorized means the requester was not authenticated.
	Unauthorized
	// Forbidden means the actor lacks rights over the targeted record.
	Forbidden
	// NotFound means the identifier did not resolve.
	NotFound
	// Conflict means the operation is invalid for the record's current state.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error carries a kind alongside a caller-facing message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New builds a kinded error with a fixed message.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Newf builds a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind reports the classification of this error.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the caller-facing message without wrapped detail.
func (e *Error) Message() string { return e.msg }

// KindOf walks the error chain and returns the first classification found.
// Unclassified errors are Unexpected.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return Unexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind == kind
	}
	return kind == Unexpected
}
