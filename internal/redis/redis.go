package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/surjeetsr38/gyansathi-backend/internal/config"
)

// NewClient connects the rate-limiter's Redis backend. Startup fails hard on
// an unreachable Redis; once running, the limiter itself fails open instead.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	slog.Info("redis rate-limit backend ready", "addr", cfg.Addr(), "db", cfg.DB)
	return client, nil
}
