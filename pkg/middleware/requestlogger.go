package middleware

import (
	"log/slog"
	"net/http"

	"github.com/orjumedia/storefront/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, variant, trace_id and span_id. Mount it after RequestLogging
// and Tracing so those values are already present.
func RequestLogger(base *slog.Logger, variant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if variant != "" {
				ctx = logger.WithVariant(ctx, variant)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
