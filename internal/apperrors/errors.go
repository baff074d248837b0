// Package apperrors defines the error taxonomy shared by services and
// handlers. Services return these typed errors; handlers translate them
// to HTTP status codes without leaking provider internals.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnauthorized means the caller has no valid session.
	KindUnauthorized Kind = iota + 1
	// KindForbidden means the caller's role is insufficient.
	KindForbidden
	// KindNotFound means the requested entity does not exist.
	KindNotFound
	// KindConflict means a uniqueness invariant was violated.
	KindConflict
	// KindValidation means the input failed validation; Field names the
	// offending input so the UI can attach the message to it.
	KindValidation
	// KindExternal means an external collaborator (payment gateway,
	// address lookup) failed. The raw provider error is kept for logs
	// only and never rendered to the buyer.
	KindExternal
)

// Error is a typed application error.
type Error struct {
	Kind  Kind
	Msg   string
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized creates an unauthorized error
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Forbidden creates a forbidden error
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// NotFound creates a not found error
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Conflict creates a conflict error
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Validation creates a field-level validation error
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Field: field}
}

// External wraps an external collaborator failure
func External(msg string, err error) *Error {
	return &Error{Kind: KindExternal, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, or 0 if err is not an application error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// FieldOf extracts the validation field from err, or "" if none
func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
