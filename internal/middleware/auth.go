// Package middleware provides HTTP middlewares for authentication,
// rate limiting, and request logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/keydrop/keydrop-core/internal/authtoken"
)

type ctxKey string

const (
	userIDKey   ctxKey = "user_id"
	deviceIDKey ctxKey = "device_id"
)

// BearerAuth builds a middleware that validates the Authorization:
// Bearer <token> header against signer and stores the token's user
// and device id in the request context. Requests with a missing,
// malformed, or invalid token are rejected with 401 before reaching
// the wrapped handler.
func BearerAuth(signer *authtoken.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := signer.Parse(strings.TrimPrefix(header, prefix))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, deviceIDKey, claims.DeviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id stored by
// BearerAuth. Returns an empty string if not present.
func UserIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(userIDKey).(string)
	return s
}

// DeviceIDFromContext extracts the authenticated device id stored by
// BearerAuth. Returns an empty string if not present.
func DeviceIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(deviceIDKey).(string)
	return s
}
