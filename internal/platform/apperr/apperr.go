// Package apperr defines the error kinds surfaced by the front-desk domain
// and their mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a failure for callers.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
	KindValidation
	KindInactive
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindInactive:
		return "inactive"
	default:
		return "unexpected"
	}
}

// Error carries a Kind, a message safe to show to the caller and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error   { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...interface{}) error   { return newf(KindConflict, format, args...) }
func Auth(format string, args ...interface{}) error       { return newf(KindAuth, format, args...) }
func Forbidden(format string, args ...interface{}) error  { return newf(KindForbidden, format, args...) }
func Validation(format string, args ...interface{}) error { return newf(KindValidation, format, args...) }
func Inactive(format string, args ...interface{}) error   { return newf(KindInactive, format, args...) }

// Unexpected wraps a storage or sink failure.
func Unexpected(err error, format string, args ...interface{}) error {
	e := newf(KindUnexpected, format, args...)
	e.Err = err
	return e
}

// KindOf returns the Kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }
func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }

// ToHTTP converts a domain error into an echo HTTP error. Unexpected errors
// hide their detail from the caller.
func ToHTTP(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var ae *Error
	if !errors.As(err, &ae) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	switch ae.Kind {
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, ae.Message)
	case KindConflict, KindValidation, KindInactive:
		return echo.NewHTTPError(http.StatusBadRequest, ae.Message)
	case KindAuth:
		return echo.NewHTTPError(http.StatusUnauthorized, ae.Message)
	case KindForbidden:
		return echo.NewHTTPError(http.StatusForbidden, ae.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}
