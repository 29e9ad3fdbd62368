package models

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so handlers can map it to an HTTP status.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindAlreadyRolledOver
	KindValidation
	KindBettingClosed
	KindNoBet
	KindStorage
)

// Error is the structured failure returned across the service boundary.
// The Message is safe to surface verbatim to the UI.
type Error struct {
	Kind    Kind   `json:"-"`
	Message string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

func newError(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error { return newError(KindNotFound, format, args...) }
func Conflictf(format string, args ...any) *Error { return newError(KindConflict, format, args...) }
func AlreadyRolledOverf(format string, args ...any) *Error {
	return newError(KindAlreadyRolledOver, format, args...)
}
func Validationf(format string, args ...any) *Error { return newError(KindValidation, format, args...) }
func BettingClosedf(format string, args ...any) *Error {
	return newError(KindBettingClosed, format, args...)
}
func NoBetf(format string, args ...any) *Error   { return newError(KindNoBet, format, args...) }
func Storagef(format string, args ...any) *Error { return newError(KindStorage, format, args...) }

// KindOf returns the Kind of err, or 0 for non-domain errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
