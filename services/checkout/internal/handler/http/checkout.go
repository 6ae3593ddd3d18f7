package http

import (
	"log/slog"
	"net/http"

	"github.com/orjumedia/storefront/pkg/httputil"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
	"github.com/orjumedia/storefront/services/checkout/internal/handler"
	"github.com/orjumedia/storefront/services/checkout/internal/service"
)

// CheckoutHandler serves the standalone relay endpoint.
type CheckoutHandler struct {
	service  service.CheckoutSessionService
	defaults domain.RedirectURLs
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler. defaults are used
// when the caller sends no redirect URLs.
func NewCheckoutHandler(svc service.CheckoutSessionService, defaults domain.RedirectURLs, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:  svc,
		defaults: defaults,
		logger:   logger,
	}
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	req, err := handler.DecodeCheckoutRequest(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	url, err := h.service.CreateSession(r.Context(), req, h.defaults)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, handler.SessionResponse{URL: url})
}
