package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// principalKey is the context key for the authenticated user id.
const principalKey = contextKey("principal")

// PrincipalFromContext returns the user id established by the middleware for
// this request. It is the only trusted source of identity downstream; client
// supplied user id fields are never consulted.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(principalKey).(string)
	return userID, ok
}

// WithPrincipal returns a context carrying userID as the request principal.
// Exposed for handler tests.
func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey, userID)
}

// Middleware creates a middleware that rejects requests without a valid
// bearer token before they reach a handler. The onReject callback writes the
// 401 response so the transport layer owns the error envelope.
func Middleware(resolver TokenResolver, onReject func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				onReject(w, r)
				return
			}

			userID, ok := resolver.Resolve(token)
			if !ok {
				onReject(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the session token from a request.
func BearerToken(r *http.Request) string {
	// 1. Try to get the token from the Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, "Bearer ")
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. If not in header, fall back to the cookie
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
