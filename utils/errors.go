// utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrUserIDNotFound = errors.New("authentication required: user ID not found")

// ErrorKind classifies failures for the HTTP boundary.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindInvalidRange      ErrorKind = "INVALID_RANGE"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindConflict          ErrorKind = "CONFLICT"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindInvalidSignature  ErrorKind = "INVALID_SIGNATURE"
	KindUpstreamPayment   ErrorKind = "UPSTREAM_PAYMENT_ERROR"
	KindInternal          ErrorKind = "INTERNAL_ERROR"
)

// AppError carries a kind, a caller-safe message and an optional cause that is
// only ever logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so errors.Is(err, utils.ErrNotFound) works
// regardless of the message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrInvalidRange      = &AppError{Kind: KindInvalidRange}
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrForbidden         = &AppError{Kind: KindForbidden}
	ErrConflict          = &AppError{Kind: KindConflict}
	ErrInvalidTransition = &AppError{Kind: KindInvalidTransition}
	ErrInvalidSignature  = &AppError{Kind: KindInvalidSignature}
	ErrUpstreamPayment   = &AppError{Kind: KindUpstreamPayment}
	ErrInternal          = &AppError{Kind: KindInternal}
)

func NewError(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: cause}
}

func ValidationError(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidRange(message string) *AppError {
	return &AppError{Kind: KindInvalidRange, Message: message}
}

func NotFound(what string) *AppError {
	return &AppError{Kind: KindNotFound, Message: what + " not found"}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InvalidTransition(format string, args ...any) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// InvalidSignature never says what was expected.
func InvalidSignature() *AppError {
	return &AppError{Kind: KindInvalidSignature, Message: "invalid payment verification"}
}

func UpstreamPayment(message string, cause error) *AppError {
	return &AppError{Kind: KindUpstreamPayment, Message: message, Err: cause}
}

func Internal(cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: cause}
}

// KindOf returns the kind of err, treating anything that is not an AppError as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to its response status.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindValidation, KindInvalidRange, KindInvalidTransition, KindInvalidSignature:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamPayment:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
