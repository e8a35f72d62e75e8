// Package middleware contains HTTP middleware for the worker's API surface.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/devschro/next-precedent/internal/api/shared"
)

// SecretMiddleware authenticates requests with a shared secret supplied
// either as the x-cron-secret header or the token query parameter. It is
// meant for machine callers (cron triggers, the web API layer), not users.
type SecretMiddleware struct {
	secret string
}

// NewSecretMiddleware creates a middleware checking against the given secret.
func NewSecretMiddleware(secret string) *SecretMiddleware {
	if secret == "" {
		panic("secret cannot be empty")
	}
	return &SecretMiddleware{secret: secret}
}

// Require rejects requests without a valid secret before any handler runs,
// so unauthenticated calls never touch queue state.
func (m *SecretMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		supplied := r.Header.Get("x-cron-secret")
		if supplied == "" {
			supplied = r.URL.Query().Get("token")
		}

		if supplied == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing secret")
			return
		}

		if subtle.ConstantTimeCompare([]byte(supplied), []byte(m.secret)) != 1 {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid secret")
			return
		}

		next.ServeHTTP(w, r)
	})
}
