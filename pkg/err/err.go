package errprocess

import (
	"errors"
	"net/http"
)

// Kind error category
type Kind int

const (
	// KindInternal unexpected failure (store connectivity etc.)
	KindInternal Kind = iota
	// KindNotFound thread / message / member absent
	KindNotFound
	// KindAccessDenied caller may not touch the resource
	KindAccessDenied
	// KindValidation bad input
	KindValidation
	// KindAuth missing or invalid credential
	KindAuth
	// KindConflict operation conflicts with current state
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindValidation:
		return "validation_failure"
	case KindAuth:
		return "auth_failure"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error typed error carried up to the request boundary
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound build a not found error
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// AccessDenied build an access denied error
func AccessDenied(msg string) error { return &Error{Kind: KindAccessDenied, Message: msg} }

// Validation build a validation error
func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

// Auth build an auth error
func Auth(msg string) error { return &Error{Kind: KindAuth, Message: msg} }

// Conflict build a conflict error
func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// Internal wrap an unexpected error
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf return the Kind of err, KindInternal when untyped
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is check err kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus map error kind to http status
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage message safe to return to clients
func PublicMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return fallback
}
