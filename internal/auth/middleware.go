package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

type contextKey string

const claimsKey = contextKey("claims")

// Middleware rejects requests without a valid bearer token and stores the
// claims in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Validate(r.Header.Get("Authorization"))
		if err != nil {
			reason := ErrInvalidCredential.Error()
			if errors.Is(err, ErrCredentialMissing) {
				reason = ErrCredentialMissing.Error()
			}
			slog.Debug("[AUTH] Rejected request", "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": reason}) //nolint:errcheck
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// UserIDFromContext returns "" when the request was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID()
	}
	return ""
}
