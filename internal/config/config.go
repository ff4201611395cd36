package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	AppPort     string
	AppVersion  string
	DatabaseURL string
	StoreDriver string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventsChannel string

	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	// API limits
	APIRateLimit  int
	APIRateWindow time.Duration

	NotifyWebhookURL string
}

// LoadFromEnv reads the process environment, after an optional .env file.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:          getenv("APP_PORT", "8080"),
		AppVersion:       getenv("APP_VERSION", "dev"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoreDriver:      strings.ToLower(getenv("STORE_DRIVER", StoreDriverPostgres)),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getint("REDIS_DB", 0),
		EventsChannel:    getenv("EVENTS_CHANNEL", "task-events"),
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogJSON:          os.Getenv("LOG_JSON") == "true",
		APIRateLimit:     getint("API_RATE_LIMIT", 120),
		APIRateWindow:    time.Duration(getint("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
	case StoreDriverMemory:
	default:
		return nil, errors.New("STORE_DRIVER must be postgres or memory")
	}

	return cfg, nil
}

// Load is LoadFromEnv for process startup.
func Load() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getint ignores malformed and non-positive values.
func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
