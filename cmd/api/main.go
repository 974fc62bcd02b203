package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surjeetsr38/gyansathi-backend/internal/api"
	"github.com/surjeetsr38/gyansathi-backend/internal/auth"
	"github.com/surjeetsr38/gyansathi-backend/internal/config"
	"github.com/surjeetsr38/gyansathi-backend/internal/database"
	"github.com/surjeetsr38/gyansathi-backend/internal/events"
	"github.com/surjeetsr38/gyansathi-backend/internal/gemini"
	"github.com/surjeetsr38/gyansathi-backend/internal/generate"
	"github.com/surjeetsr38/gyansathi-backend/internal/middleware"
	"github.com/surjeetsr38/gyansathi-backend/internal/promptlog"
	"github.com/surjeetsr38/gyansathi-backend/internal/quota"
	iredis "github.com/surjeetsr38/gyansathi-backend/internal/redis"
	"github.com/surjeetsr38/gyansathi-backend/internal/server"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL is optional; without it quota lives in process memory and
	// prompt logging has no table to write to.
	var (
		pool       *pgxpool.Pool
		quotaStore quota.Store
		logRepo    *promptlog.Repository
	)
	if cfg.DB.Enabled() {
		pool, err = database.NewPostgresPool(ctx, cfg.DB)
		if err != nil {
			slog.Error("connecting to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.RunMigrations(cfg.DB.DSN(), migrationsPath); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}

		quotaStore = quota.NewPostgresStore(pool)
		logRepo = promptlog.NewRepository(pool)
	} else {
		quotaStore = quota.NewMemoryStore()
	}

	// Redis is optional; without it rate limiting is per-process.
	var rateLimiter func(http.Handler) http.Handler
	if cfg.Redis.Enabled() {
		redisClient, err := iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg.Limits.MaxPerWindow, cfg.Limits.Window()).Middleware
	} else {
		rateLimiter = middleware.NewMemoryRateLimiter(cfg.Limits.MaxPerWindow, cfg.Limits.Window()).Middleware
	}

	// NATS is an optional telemetry sink.
	var (
		publisher   *events.Publisher
		natsHealthy func() bool
	)
	if cfg.NATS.Enabled() {
		natsClient, err := events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
		natsHealthy = natsClient.Healthy
	}

	engine := quota.NewEngine(quotaStore, cfg.Limits.DailyQuota)
	logger := promptlog.NewLogger(logRepo, publisher, cfg.Limits.PromptLogging)
	client := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Gemini.Timeout)
	handler := generate.NewHandler(cfg.Limits, engine, client, logger)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	router := api.NewRouter(pool, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimiter:        rateLimiter,
	}, api.HandlerSet{
		Health:         handler.Health,
		GetQuota:       handler.Quota,
		Generate:       handler.Generate,
		AuthMiddleware: auth.Middleware(verifier),
		NATSHealthy:    natsHealthy,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.Log) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
