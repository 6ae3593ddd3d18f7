// Package handler holds what the standalone and function adapters share.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/validator"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
)

// MaxBodyBytes bounds a checkout request body.
const MaxBodyBytes = 1 << 20

// SessionResponse is the success body of both adapters.
type SessionResponse struct {
	URL string `json:"url"`
}

// DecodeCheckoutRequest reads a CheckoutRequest from the request body. Bodies
// that are not JSON wrap validator.ErrMalformedBody. Valid JSON that is not an
// object decodes to an empty request so the cart check reports it.
func DecodeCheckoutRequest(w http.ResponseWriter, r *http.Request) (*domain.CheckoutRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.InvalidInput("Request body too large")
		}
		return nil, fmt.Errorf("%w: %v", validator.ErrMalformedBody, err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", validator.ErrMalformedBody)
	}

	req := &domain.CheckoutRequest{}
	if body[0] != '{' {
		return req, nil
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("%w: %v", validator.ErrMalformedBody, err)
	}
	return req, nil
}
