package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/surjeetsr38/gyansathi-backend/internal/api/apperr"
)

// Recovery turns handler panics into a generic 500 instead of a dropped
// connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic in handler",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				apperr.Handle(w, apperr.ErrServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
