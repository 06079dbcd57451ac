package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrValidation       = errors.New("malformed body")
	ErrInternal         = errors.New("internal error")
)

// Wire-level error codes returned in the response envelope. They are part of
// the public API contract and must not change between releases.
const (
	CodeUnauthorized     = 800
	CodeWrongCredentials = 801
	CodeUsernameInUse    = 807
	CodeEmailInUse       = 808
	CodeMalformedBody    = 810
	CodeForbidden        = 813
	CodeSuccess          = 900

	// NotFound and internal failures share code 0; callers distinguish them
	// by HTTP status.
	CodeNone = 0
)

// AppError is a structured application error carrying the wire code, the HTTP
// status class, and an optional list of field-level messages.
type AppError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Status  int      `json:"-"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthorized creates an 800/401 error: missing, malformed, expired, or
// revoked credential, or a principal that no longer exists.
func Unauthorized() *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: "Unauthorized",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// WrongCredentials creates an 801/401 error for a login identifier/secret
// mismatch. The same error covers both the unknown-identifier and
// wrong-password cases so the caller cannot tell which check failed.
func WrongCredentials() *AppError {
	return &AppError{
		Code:    CodeWrongCredentials,
		Message: "Wrong credentials",
		Status:  http.StatusUnauthorized,
		Err:     ErrWrongCredentials,
	}
}

// UsernameInUse creates an 807/401 registration-collision error.
func UsernameInUse() *AppError {
	return &AppError{
		Code:    CodeUsernameInUse,
		Message: "Username is already in use",
		Status:  http.StatusUnauthorized,
		Err:     ErrAlreadyExists,
	}
}

// EmailInUse creates an 808/401 registration-collision error.
func EmailInUse() *AppError {
	return &AppError{
		Code:    CodeEmailInUse,
		Message: "Email is already in use",
		Status:  http.StatusUnauthorized,
		Err:     ErrAlreadyExists,
	}
}

// Forbidden creates an 813/403 error: valid credential bound to a different
// network origin, or insufficient role.
func Forbidden() *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: "Forbidden",
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// NotFound creates a 404 error for an absent resource.
func NotFound() *AppError {
	return &AppError{
		Code:    CodeNone,
		Message: "Not found",
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Validation creates an 810/400 error carrying field-level messages.
func Validation(messages []string) *AppError {
	return &AppError{
		Code:    CodeMalformedBody,
		Message: "Malformed body",
		Errors:  messages,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// Internal wraps an unexpected error. The wrapped detail is logged server-side
// and never leaks to the caller.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeNone,
		Message: "Something went wrong",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrWrongCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
