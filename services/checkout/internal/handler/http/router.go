package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/health"
	"github.com/orjumedia/storefront/pkg/httputil"
	"github.com/orjumedia/storefront/pkg/middleware"
	"github.com/orjumedia/storefront/services/checkout/internal/config"
)

// ServiceName labels this adapter's metrics and spans.
const ServiceName = "checkout-relay"

// NewRouter creates a chi router for the standalone relay.
func NewRouter(
	checkoutHandler *CheckoutHandler,
	healthHandler *health.Handler,
	cors middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger, config.VariantStandalone))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.NewErrorResponse("NOT_FOUND", "Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperrors.MethodNotAllowed(), logger)
	})

	healthHandler.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/create-checkout-session", checkoutHandler.CreateCheckoutSession)

	return r
}
