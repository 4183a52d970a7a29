package middleware

import (
	"net/http"

	"github.com/edvin/skinsight/internal/api/response"
)

// RequireScope returns middleware that checks the authenticated key carries
// the given scope. Authentication must have run earlier in the chain.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetIdentity(r.Context())
			if key == nil || !key.HasScope(scope) {
				response.WriteError(w, http.StatusForbidden, "insufficient scope: requires "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
