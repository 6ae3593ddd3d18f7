package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]string{"url": "https://pay.example/s/1"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://pay.example/s/1"}`, rec.Body.String())
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", nil)

	WriteError(rec, req, apperrors.InvalidInput("Cart too large"), testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Cart too large", resp.Message())
	assert.Equal(t, "INVALID_INPUT", resp.Code)
}

func TestWriteError_UpstreamDetailPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	detail := []byte(`{"error":{"message":"No such price","type":"invalid_request_error"}}`)

	WriteError(rec, req, apperrors.BadGateway("gateway rejected request", detail, nil), testLogger())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode(t, rec)
	assert.JSONEq(t, string(detail), string(resp.Error))
	assert.Equal(t, "BAD_GATEWAY", resp.Code)
}

func TestWriteError_MalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteError(rec, req, fmt.Errorf("%w: eof", validator.ErrMalformedBody), testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decode(t, rec).Message())
}

func TestWriteError_ValidationError(t *testing.T) {
	type body struct {
		Name string `validate:"required"`
	}
	err := validator.Validate(body{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "is required", resp.Fields["Name"])
}

func TestWriteError_UnknownErrorIsMasked(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("secret sk_test_123 leaked"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "an internal error occurred", resp.Message())
	assert.NotContains(t, rec.Body.String(), "sk_test_123")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "corr-42"))

	WriteError(rec, req, apperrors.MethodNotAllowed(), testLogger())

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "corr-42", resp.RequestID)
	assert.Equal(t, "Method not allowed", resp.Message())
}

func TestErrorResponse_MessageFallsBackToRaw(t *testing.T) {
	resp := ErrorResponse{Error: json.RawMessage(`{"a":1}`)}
	assert.Equal(t, `{"a":1}`, resp.Message())
	assert.Equal(t, "x", NewErrorResponse("C", "x").Message())
}
