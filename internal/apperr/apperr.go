// Package apperr provides application-level error values carrying an error
// kind and the HTTP status it maps to at the transport boundary.
package apperr

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindInternal     Kind = "internal_error"
)

// Error is an application error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Validation reports malformed input; the message should name the field.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Code: http.StatusBadRequest}
}

// NotFound reports a resource id that did not resolve.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Code: http.StatusNotFound}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Code: http.StatusConflict}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Code: http.StatusUnauthorized}
}

// Forbidden reports a valid identity lacking the required role or ownership.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message, Code: http.StatusForbidden}
}

// Internal reports an infrastructure fault; the message is safe for clients.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Code: http.StatusInternalServerError}
}

// From extracts an *Error from err, or nil when err is not one.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	appErr := From(err)
	return appErr != nil && appErr.Kind == kind
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
