package middleware

import (
	"net/http"
	"strings"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/httputil"
)

// MissingPlatformKeyMessage is returned when neither apikey nor Authorization is sent.
const MissingPlatformKeyMessage = "No apikey/authorization header provided. Include the platform anon key as the `apikey` header or as `Authorization: Bearer <key>`."

// PlatformKey returns the caller-supplied platform key from the apikey header,
// falling back to the Authorization header with any Bearer prefix removed.
func PlatformKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("apikey")); key != "" {
		return key
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return auth
}

// RequirePlatformKey rejects requests that carry no platform key with 401.
// Only presence is checked; the hosting platform validates the key itself.
func RequirePlatformKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PlatformKey(r) == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized(MissingPlatformKeyMessage), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
