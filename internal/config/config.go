package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server Server
	Auth   Auth
	Gemini Gemini
	Limits Limits
	DB     DB
	Redis  Redis
	NATS   NATS
	CORS   CORS
	Log    Log
}

type Server struct {
	Host string
	Port int
}

type Auth struct {
	// JWTSecret is the HS256 secret shared with the identity provider.
	JWTSecret string
}

type Gemini struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Limits holds every request-limiting knob: the per-IP rate window, the
// per-caller daily quota and the prompt sanitizer cap.
type Limits struct {
	WindowMs       int
	MaxPerWindow   int
	DailyQuota     int
	MaxPromptChars int
	PromptLogging  bool
}

func (l Limits) Window() time.Duration {
	return time.Duration(l.WindowMs) * time.Millisecond
}

type DB struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// Enabled reports whether a persistent store was configured. Without one the
// gateway falls back to in-memory quota tracking and skips prompt logging.
func (c DB) Enabled() bool {
	return c.Host != ""
}

func (c DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c Redis) Enabled() bool {
	return c.Host != ""
}

func (c Redis) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATS struct {
	URL string
}

func (c NATS) Enabled() bool {
	return c.URL != ""
}

type CORS struct {
	AllowedOrigins []string
}

type Log struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: Server{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		Auth: Auth{
			JWTSecret: k.String("auth.jwt.secret"),
		},
		Gemini: Gemini{
			APIKey:  k.String("gemini.api.key"),
			BaseURL: k.String("gemini.base.url"),
			Model:   k.String("gemini.model"),
		},
		Limits: Limits{
			WindowMs:       k.Int("rate.limit.window.ms"),
			MaxPerWindow:   k.Int("rate.limit.max"),
			DailyQuota:     k.Int("daily.quota"),
			MaxPromptChars: k.Int("max.prompt.chars"),
			PromptLogging:  true,
		},
		DB: DB{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: Redis{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATS{
			URL: k.String("nats.url"),
		},
		Log: Log{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if k.Exists("prompt.logging") {
		cfg.Limits.PromptLogging = k.Bool("prompt.logging")
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Limits.WindowMs == 0 {
		cfg.Limits.WindowMs = 60000
	}
	if cfg.Limits.MaxPerWindow == 0 {
		cfg.Limits.MaxPerWindow = 30
	}
	if cfg.Limits.DailyQuota == 0 {
		cfg.Limits.DailyQuota = 100
	}
	if cfg.Limits.MaxPromptChars == 0 {
		cfg.Limits.MaxPromptChars = 4000
	}
	if cfg.DB.Enabled() {
		if cfg.DB.Port == 0 {
			cfg.DB.Port = 5432
		}
		if cfg.DB.User == "" {
			cfg.DB.User = "gyansathi"
		}
		if cfg.DB.Name == "" {
			cfg.DB.Name = "gyansathi"
		}
		if cfg.DB.SSLMode == "" {
			cfg.DB.SSLMode = "disable"
		}
		if cfg.DB.MaxConns == 0 {
			cfg.DB.MaxConns = 25
		}
	}
	if cfg.Redis.Enabled() && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	timeoutStr := k.String("gemini.timeout")
	if timeoutStr == "" {
		timeoutStr = "60s"
	}
	cfg.Gemini.Timeout, err = time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing gemini timeout: %w", err)
	}

	return cfg, nil
}
