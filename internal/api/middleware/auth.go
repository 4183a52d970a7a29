package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/edvin/skinsight/internal/api/response"
	"github.com/edvin/skinsight/internal/core"
	"github.com/edvin/skinsight/internal/model"
)

type contextKey string

const APIKeyIdentityKey contextKey = "api_key_identity"

// KeyResolver resolves a raw credential to the API key it belongs to.
type KeyResolver interface {
	Resolve(ctx context.Context, rawKey string) (*model.APIKey, error)
}

// Auth returns a middleware that validates the X-API-Key header. The resolved
// key is stored in the request context for downstream scope checks and rate
// limiting. Resolution failures and missing headers both end in a 401; only
// infrastructure errors surface as 500.
func Auth(resolver KeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-API-Key")
			if raw == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			key, err := resolver.Resolve(r.Context(), raw)
			if err != nil {
				if errors.Is(err, core.ErrUnauthorized) {
					response.WriteError(w, http.StatusUnauthorized, "invalid API key")
					return
				}
				response.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyIdentityKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the authenticated API key from the request context.
func GetIdentity(ctx context.Context) *model.APIKey {
	key, _ := ctx.Value(APIKeyIdentityKey).(*model.APIKey)
	return key
}
