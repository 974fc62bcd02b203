package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/surjeetsr38/gyansathi-backend/internal/api/apperr"
)

type contextKey string

const claimsKey contextKey = "caller_claims"

// Middleware rejects requests without a valid bearer identity token and
// injects the verified claims into the request context.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apperr.Handle(w, apperr.ErrNoToken)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				apperr.Handle(w, apperr.ErrNoToken)
				return
			}

			claims, err := v.Verify(parts[1])
			if err != nil {
				apperr.Handle(w, apperr.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the verified claims, or nil outside the middleware.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}
