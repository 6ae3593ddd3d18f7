package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidInput, ErrUnauthorized, ErrMethodNotAllowed,
		ErrNotConfigured, ErrInternal, ErrUpstream, ErrUpstreamTimeout,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("dial tcp: refused")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "dial tcp: refused")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "INVALID_INPUT", Message: "Cart too large"}
	assert.Equal(t, "INVALID_INPUT: Cart too large", appErr.Error())
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("Invalid price at index 2")
	require.NotNil(t, err)
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "Invalid price at index 2", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("no key")
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestMethodNotAllowed(t *testing.T) {
	err := MethodNotAllowed()
	assert.Equal(t, http.StatusMethodNotAllowed, err.Status)
	assert.Equal(t, "Method not allowed", err.Message)
}

func TestNotConfigured(t *testing.T) {
	err := NotConfigured("STRIPE_SECRET_KEY is not set")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestBadGateway_KeepsValidJSONDetail(t *testing.T) {
	err := BadGateway("gateway rejected", []byte(`{"error":{"type":"invalid_request_error"}}`), nil)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.JSONEq(t, `{"error":{"type":"invalid_request_error"}}`, string(err.Detail))
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestBadGateway_DropsNonJSONDetail(t *testing.T) {
	err := BadGateway("gateway rejected", []byte("<html>oops</html>"), nil)
	assert.Nil(t, err.Detail)
}

func TestGatewayTimeout(t *testing.T) {
	err := GatewayTimeout("timed out", context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, err.Status)
	assert.True(t, errors.Is(err, ErrUpstreamTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("x"), http.StatusBadRequest},
		{"wrapped app error", Wrap(Unauthorized("x"), "ctx"), http.StatusUnauthorized},
		{"sentinel invalid", fmt.Errorf("bad: %w", ErrInvalidInput), http.StatusBadRequest},
		{"sentinel upstream", fmt.Errorf("bad: %w", ErrUpstream), http.StatusBadGateway},
		{"sentinel timeout", fmt.Errorf("bad: %w", ErrUpstreamTimeout), http.StatusGatewayTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
