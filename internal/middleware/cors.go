package middleware

import (
	"slices"

	"github.com/go-chi/cors"
)

// CORS builds the browser policy for the gateway. The API is read/submit
// only, so the method list stays minimal, and the per-user quota header is
// exposed so frontends can show remaining usage without a second request.
// Credentials are disabled when a wildcard origin is configured, since
// browsers reject that combination.
func CORS(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-User-Remaining", "Retry-After"},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
		MaxAge:           300,
	}
}
