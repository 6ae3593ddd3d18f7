package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/pkg/validator"
)

// ErrorResponse is the error body returned by every endpoint. Error is either a
// JSON string or, for upstream failures, the upstream payload verbatim.
type ErrorResponse struct {
	Error     json.RawMessage   `json:"error"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// NewErrorResponse builds an ErrorResponse carrying a plain message.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: quote(message), Code: code}
}

// Message returns the error as a string when it was written as one.
func (e ErrorResponse) Message() string {
	var s string
	if err := json.Unmarshal(e.Error, &s); err != nil {
		return string(e.Error)
	}
	return s
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error body for err. It prefers the request-scoped
// logger from context over fallback and logs every 5xx.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	resp := ErrorResponse{RequestID: requestID}
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	var valErr *validator.ValidationError
	switch {
	case errors.As(err, &appErr):
		resp.Code = appErr.Code
		resp.Error = quote(appErr.Message)
		if len(appErr.Detail) > 0 {
			resp.Error = appErr.Detail
		}
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		resp.Code = "VALIDATION_ERROR"
		resp.Error = quote(valErr.Error())
		resp.Fields = valErr.Fields()
	case errors.Is(err, validator.ErrMalformedBody):
		status = http.StatusBadRequest
		resp.Code = "INVALID_INPUT"
		resp.Error = quote("Invalid JSON body")
	case status == http.StatusBadRequest:
		resp.Code = "INVALID_INPUT"
		resp.Error = quote(err.Error())
	default:
		resp.Code = "INTERNAL_ERROR"
		resp.Error = quote("an internal error occurred")
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.Int("status", status),
			slog.String("code", resp.Code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, resp)
}
