package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by BasicAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// BasicAuth rejects requests without valid credentials (401) or without
// requiredRole (403) before they reach next.
func BasicAuth(provider IdentityProvider, requiredRole string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				challenge(w)
				return
			}

			id, err := provider.Authenticate(r.Context(), username, password)
			if err != nil {
				if !errors.Is(err, ErrInvalidCredentials) {
					logger.Error("Identity provider failed", zap.String("username", username), zap.Error(err))
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				logger.Info("Rejected credentials", zap.String("username", username))
				challenge(w)
				return
			}

			if !id.HasRole(requiredRole) {
				logger.Info("Missing required role",
					zap.String("username", username),
					zap.String("required_role", requiredRole))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="cashcards", charset="UTF-8"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
