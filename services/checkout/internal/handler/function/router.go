package function

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/httputil"
	"github.com/orjumedia/storefront/pkg/middleware"
	"github.com/orjumedia/storefront/services/checkout/internal/config"
	"github.com/orjumedia/storefront/services/checkout/internal/service"
)

// ServiceName labels this adapter's metrics and spans.
const ServiceName = "checkout-function"

// Routes the platform may forward the invocation on.
const (
	RoutePlatform = "/functions/v1/create-checkout"
	RouteRoot     = "/"
)

// NewRouter creates the function router. The checks run in a fixed order:
// preflight, method, gateway secret, platform key, body.
func NewRouter(svc service.CheckoutSessionService, logger *slog.Logger) http.Handler {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger, config.VariantFunction))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.NewErrorResponse("NOT_FOUND", "Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperrors.MethodNotAllowed(), logger)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireConfigured(svc, logger))
		r.Use(middleware.RequirePlatformKey())

		r.Post(RouteRoot, h.CreateCheckout)
		r.Post(RoutePlatform, h.CreateCheckout)
	})

	return r
}
