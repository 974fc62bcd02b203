package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// Identity-provider secret: without it no caller can ever be verified,
	// so refusing to start beats serving nothing but 401s.
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "AUTH_JWT_SECRET is required")
	} else if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, "AUTH_JWT_SECRET must be at least 32 characters")
	}

	// Gemini key: warn only. Requests fail with MISSING_GEMINI_KEY until set.
	if c.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is empty: /generate will return MISSING_GEMINI_KEY")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Enabled() && (c.DB.Port < 1 || c.DB.Port > 65535) {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Enabled() && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Limit values
	if c.Limits.WindowMs < 1 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_WINDOW_MS must be positive, got %d", c.Limits.WindowMs))
	}
	if c.Limits.MaxPerWindow < 1 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_MAX must be positive, got %d", c.Limits.MaxPerWindow))
	}
	if c.Limits.DailyQuota < 1 {
		errs = append(errs, fmt.Sprintf("DAILY_QUOTA must be positive, got %d", c.Limits.DailyQuota))
	}
	if c.Limits.MaxPromptChars < 1 {
		errs = append(errs, fmt.Sprintf("MAX_PROMPT_CHARS must be positive, got %d", c.Limits.MaxPromptChars))
	}

	if !c.DB.Enabled() {
		slog.Warn("DB_HOST is empty: quota records are in-memory and reset on restart")
	}
	if !c.Redis.Enabled() {
		slog.Warn("REDIS_HOST is empty: rate limiting is per-process only")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
