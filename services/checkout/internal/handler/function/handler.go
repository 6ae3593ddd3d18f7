// Package function adapts the relay to a managed platform that invokes it per
// request behind its own API gateway.
package function

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/orjumedia/storefront/pkg/httputil"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
	"github.com/orjumedia/storefront/services/checkout/internal/handler"
	"github.com/orjumedia/storefront/services/checkout/internal/service"
)

// Handler serves the platform function endpoint.
type Handler struct {
	service service.CheckoutSessionService
	logger  *slog.Logger
}

// NewHandler creates the function handler.
func NewHandler(svc service.CheckoutSessionService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// CreateCheckout handles POST on the function routes. Missing redirect URLs
// default to the site root and the cart page of the calling origin.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	req, err := handler.DecodeCheckoutRequest(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	url, err := h.service.CreateSession(r.Context(), req, DefaultRedirects(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, handler.SessionResponse{URL: url})
}

// RequireConfigured answers 500 before anything else is checked when the
// gateway secret is missing.
func RequireConfigured(svc service.CheckoutSessionService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := svc.Ready(); err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultRedirects derives success and cancel URLs from the request origin.
func DefaultRedirects(r *http.Request) domain.RedirectURLs {
	origin := RequestOrigin(r)
	return domain.RedirectURLs{
		Success: origin + "/",
		Cancel:  origin + "/cart",
	}
}

// RequestOrigin returns scheme://host for r, honouring X-Forwarded-Proto and
// X-Forwarded-Host set by the platform's proxy.
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(proto)
	}

	host := r.Host
	if fwd := firstValue(r.Header.Get("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

func firstValue(header string) string {
	if i := strings.IndexByte(header, ','); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
