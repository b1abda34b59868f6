// Package apperr defines the error taxonomy shared by the services and both HTTP entry points.
package apperr

import (
	"errors"
	"net/http"

	"github.com/hindinewshub/news-api/internal/validation"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooLarge        = errors.New("payload too large")
)

// Error carries a client-facing message for one of the sentinel kinds
type Error struct {
	Kind    error
	Message string
	Fields  []validation.ValidationError
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation returns a 400-class error, optionally with per-field details
func Validation(msg string, fields ...validation.ValidationError) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Fields: fields}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: ErrUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func TooLarge(msg string) *Error {
	return &Error{Kind: ErrTooLarge, Message: msg}
}

// HTTPStatus maps an error to its response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the JSON error document. Internal errors never leak their text.
func Body(err error, fallback string) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) || HTTPStatus(err) == http.StatusInternalServerError {
		return map[string]interface{}{"error": fallback}
	}
	body := map[string]interface{}{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	return body
}
