package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/validator"
)

func post(body string) (*httptest.ResponseRecorder, *http.Request) {
	return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(body))
}

func TestDecodeCheckoutRequest_Object(t *testing.T) {
	w, r := post(`{"cart":[{"name":"Tee","price":25}],"currency":"php","success_url":"https://orju.media/"}`)

	req, err := DecodeCheckoutRequest(w, r)

	require.NoError(t, err)
	assert.Equal(t, "php", req.Currency)
	assert.Equal(t, "https://orju.media/", req.SuccessURL)
	items, ok := req.Items()
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestDecodeCheckoutRequest_NonStringTextFields(t *testing.T) {
	w, r := post(`{"cart":[{"price":1}],"currency":5,"success_url":null,"cancel_url":{"href":"x"}}`)

	req, err := DecodeCheckoutRequest(w, r)

	require.NoError(t, err)
	assert.Equal(t, "5", req.Currency)
	assert.Empty(t, req.SuccessURL)
	assert.Empty(t, req.CancelURL)
}

func TestDecodeCheckoutRequest_Malformed(t *testing.T) {
	for _, body := range []string{``, `   `, `{"cart":`, `not json`} {
		t.Run(body, func(t *testing.T) {
			w, r := post(body)
			_, err := DecodeCheckoutRequest(w, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, validator.ErrMalformedBody))
		})
	}
}

func TestDecodeCheckoutRequest_NonObjectIsEmptyRequest(t *testing.T) {
	for _, body := range []string{`[]`, `"cart"`, `42`, `null`} {
		t.Run(body, func(t *testing.T) {
			w, r := post(body)
			req, err := DecodeCheckoutRequest(w, r)
			require.NoError(t, err)
			_, ok := req.Items()
			assert.False(t, ok)
		})
	}
}

func TestDecodeCheckoutRequest_TooLarge(t *testing.T) {
	w, r := post(`{"cart":"` + strings.Repeat("x", MaxBodyBytes) + `"}`)

	_, err := DecodeCheckoutRequest(w, r)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
