// Package apperr defines the error taxonomy shared by the write and read
// pipelines. Handlers map kinds onto HTTP statuses; services attach enough
// context (entity id, key) for diagnosis without leaking store internals.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Internal is the default for unexpected failures.
	Internal Kind = iota
	// NotFound: missing owner or entry.
	NotFound
	// Conflict: duplicate natural key.
	Conflict
	// Forbidden: ownership violation on a non-admin path.
	Forbidden
	// Unauthenticated: missing or invalid credential.
	Unauthenticated
	// Invalid: malformed request.
	Invalid
	// Transient: store or transport unreachable; eligible for client retry.
	Transient
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Unauthenticated:
		return "unauthenticated"
	case Invalid:
		return "invalid"
	case Transient:
		return "transient"
	default:
		return "internal"
	}
}

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

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or Internal if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf extracts the taxonomy message from err without its wrapped
// cause, or a generic message when err carries none.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "unexpected error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
