package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/agenticlabs/smartrouter/internal/httputil"
	"github.com/agenticlabs/smartrouter/internal/types"
)

// Middleware authenticates requests with Bearer API keys and attaches the
// tenant snapshot to the request context.
func Middleware(store TenantStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := w.Header().Get("X-Request-ID")

			key := extractKey(r)
			if key == "" {
				httputil.WriteAuthError(w, requestID, "Missing API key. Pass it in the Authorization header as 'Bearer <key>'.")
				return
			}

			meta, err := store.Lookup(r.Context(), HashKey(key))
			if err != nil {
				if errors.Is(err, ErrKeyNotFound) {
					logger.Info("rejected unknown api key", "key_prefix", KeyPrefix(key))
					httputil.WriteAuthError(w, requestID, "Invalid API key.")
					return
				}
				logger.Error("api key lookup failed", "error", err)
				httputil.WriteInternalError(w, requestID, "Authentication backend unavailable.")
				return
			}

			info := &AuthInfo{
				KeyID: meta.ID,
				Tenant: types.Tenant{
					ID:            meta.TenantID,
					Name:          meta.TenantName,
					AllowedModels: meta.AllowedModels,
				},
				RPMLimit:             meta.RPMLimit,
				DailySpendLimitCents: meta.DailySpendLimitCents,
			}

			next.ServeHTTP(w, r.WithContext(ContextWithAuth(r.Context(), info)))
		})
	}
}

func extractKey(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}
