// Package apperr carries the error taxonomy the booking lifecycle exposes.
// Everything crossing the api boundary is one of these kinds; raw internal
// errors are wrapped before they leave the service layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation: bad input, rejected before any DB access.
	KindValidation Kind = iota
	// KindNotFound: booking, user or package does not exist.
	KindNotFound
	// KindForbidden: the booking does not belong to the caller.
	KindForbidden
	// KindComputation: a resolved price came out non-positive.
	KindComputation
	// KindPersistence: DB write or lock failure; safe to retry.
	KindPersistence
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies err; unrecognized errors count as persistence failures so
// callers treat them as retryable rather than leaking internals.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// MessageOf returns the boundary-safe message for err. Unclassified errors get
// a generic one so DB internals never reach the client.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error, please try again"
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Retryable reports whether the caller may re-send the same request verbatim.
func Retryable(err error) bool {
	return KindOf(err) == KindPersistence
}
