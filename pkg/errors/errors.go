package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNotConfigured    = errors.New("not configured")
	ErrInternal         = errors.New("internal error")
	ErrUpstream         = errors.New("upstream failure")
	ErrUpstreamTimeout  = errors.New("upstream timeout")
)

// AppError represents a structured application error with HTTP status mapping.
// Detail, when set, replaces Message as the "error" value on the wire. It is
// used to pass an upstream error payload through unchanged.
type AppError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"-"`
	Status  int             `json:"-"`
	Err     error           `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// MethodNotAllowed creates a 405 error.
func MethodNotAllowed() *AppError {
	return &AppError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "Method not allowed",
		Status:  http.StatusMethodNotAllowed,
		Err:     ErrMethodNotAllowed,
	}
}

// NotConfigured creates a 500 error for a missing operator setting. The message
// names the setting, never its value.
func NotConfigured(message string) *AppError {
	return &AppError{
		Code:    "NOT_CONFIGURED",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     ErrNotConfigured,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// BadGateway creates a 502 error. detail is the upstream payload and is
// surfaced verbatim when it is valid JSON.
func BadGateway(message string, detail []byte, err error) *AppError {
	appErr := &AppError{
		Code:    "BAD_GATEWAY",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     errors.Join(ErrUpstream, err),
	}
	if len(detail) > 0 && json.Valid(detail) {
		appErr.Detail = json.RawMessage(detail)
	}
	return appErr
}

// GatewayTimeout creates a 504 error.
func GatewayTimeout(message string, err error) *AppError {
	return &AppError{
		Code:    "GATEWAY_TIMEOUT",
		Message: message,
		Status:  http.StatusGatewayTimeout,
		Err:     errors.Join(ErrUpstreamTimeout, err),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
