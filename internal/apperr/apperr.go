// Package apperr defines the error taxonomy shared by the repositories and
// the HTTP layer. Repositories return these; the HTTP layer renders them as
// RFC 7807 problem-details bodies.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openleadr/openleadr-go/wire"
)

// Kind classifies an error for status-code mapping.
type Kind int

// Error kinds, ordered roughly by HTTP status.
const (
	KindValidation Kind = iota
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindMethodNotAllowed
	KindUnsupportedMedia
	KindStorage
	KindInternal
)

// Error is a classified application error.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a 400 error with the violated constraint as detail.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// Auth builds a 401 error.
func Auth(detail string) *Error { return &Error{Kind: KindAuth, Detail: detail} }

// Forbidden builds a 403 error.
func Forbidden(detail string) *Error { return &Error{Kind: KindForbidden, Detail: detail} }

// NotFound builds a 404 error.
func NotFound() *Error { return &Error{Kind: KindNotFound, Detail: "object not found"} }

// Conflict builds a 409 error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Detail: fmt.Sprintf(format, args...)}
}

// Storage wraps a database failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Detail: "storage unavailable", Err: err}
}

// Internal wraps an unexpected failure, e.g. stored JSON that no longer
// decodes.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Detail: "internal error", Err: err}
}

// MethodNotAllowed is surfaced verbatim by the router fallback.
func MethodNotAllowed() *Error {
	return &Error{Kind: KindMethodNotAllowed, Detail: "method not allowed"}
}

// UnsupportedMedia is returned when a body is not the expected content type.
func UnsupportedMedia(detail string) *Error {
	return &Error{Kind: KindUnsupportedMedia, Detail: detail}
}

// Problem renders the error as a problem-details body.
func (e *Error) Problem() wire.Problem {
	status, title := e.statusTitle()
	detail := e.Detail
	if e.Kind == KindStorage || e.Kind == KindInternal {
		// Do not leak driver internals to clients.
		detail = ""
	}
	return wire.Problem{Status: status, Title: title, Detail: detail}
}

func (e *Error) statusTitle() (int, string) {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest, "Bad Request"
	case KindAuth:
		return http.StatusUnauthorized, "Unauthorized"
	case KindForbidden:
		return http.StatusForbidden, "Forbidden"
	case KindNotFound:
		return http.StatusNotFound, "Not Found"
	case KindConflict:
		return http.StatusConflict, "Conflict"
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed, "Method Not Allowed"
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType, "Unsupported Media Type"
	case KindStorage:
		return http.StatusInternalServerError, "Storage Unavailable"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// From classifies err, passing through existing *Error values.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
