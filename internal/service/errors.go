package service

import (
	"errors"
	"fmt"
)

// Kind distinguishes ledger failures so callers can react to each one.
type Kind string

const (
	KindUnauthorized          Kind = "Unauthorized"
	KindForbidden             Kind = "Forbidden"
	KindNotFound              Kind = "NotFound"
	KindNotBookable           Kind = "NotBookable"
	KindInvalidRequest        Kind = "InvalidRequest"
	KindOutsideOperatingHours Kind = "OutsideOperatingHours"
	KindSlotUnavailable       Kind = "SlotUnavailable"
	KindConflict              Kind = "Conflict"
	KindInvalidState          Kind = "InvalidState"
	KindInternal              Kind = "Internal"
)

// Error is returned by every Ledger operation that fails.  Message is safe
// to show to the caller; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindInternal {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal for errors that
// did not originate in the ledger.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a ledger error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
