package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/surjeetsr38/gyansathi-backend/internal/database"
	mw "github.com/surjeetsr38/gyansathi-backend/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import
// cycles.
type HandlerSet struct {
	Health   http.HandlerFunc
	GetQuota http.HandlerFunc
	Generate http.HandlerFunc

	AuthMiddleware func(http.Handler) http.Handler

	// NATSHealthy reports event-sink health for the readiness probe; nil
	// means NATS is not configured.
	NATSHealthy func() bool
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimiter        func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Health with limit values; callers use it to self-configure.
	r.Get("/health", h.Health)

	// Liveness probe; always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe; checks the optional backends that are configured
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "not configured",
			"nats":     "not configured",
		}
		status := http.StatusOK

		if pool != nil {
			health["database"] = "healthy"
			if err := database.HealthCheck(r.Context(), pool); err != nil {
				health["database"] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		if h.NATSHealthy != nil {
			health["nats"] = "healthy"
			if !h.NATSHealthy() {
				health["nats"] = "unhealthy"
				health["status"] = "degraded"
			}
		}

		JSON(w, status, health)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Quota inspection; authenticated, not rate limited
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/quota", h.GetQuota)
	})

	// Generation; rate limit runs on network identity before auth
	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter)
		}
		r.Use(h.AuthMiddleware)
		r.Post("/generate", h.Generate)
	})

	return r
}
