package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/orjumedia/storefront/pkg/httputil"
	"github.com/orjumedia/storefront/pkg/logger"
)

// Recovery recovers from panics and answers 500 instead of dropping the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					resp := httputil.NewErrorResponse("INTERNAL_ERROR", "an internal error occurred")
					resp.RequestID = logger.CorrelationIDFromContext(r.Context())
					httputil.WriteJSON(w, http.StatusInternalServerError, resp)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
