package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("API_RATE_LIMIT", "")
	t.Setenv("API_RATE_WINDOW_SECONDS", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.AppPort)
	}
	if cfg.APIRateLimit != 120 || cfg.APIRateWindow != time.Minute {
		t.Fatalf("unexpected rate limit %d/%v", cfg.APIRateLimit, cfg.APIRateWindow)
	}
	if cfg.EventsChannel == "" {
		t.Fatalf("expected a default events channel")
	}
}

func TestLoadFromEnv_Required(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": "", "STORE_DRIVER": "memory"}},
		{"postgres without dsn", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "mongo"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("API_RATE_WINDOW_SECONDS", "10")
	t.Setenv("LOG_JSON", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}
	if cfg.StoreDriver != StoreDriverPostgres || cfg.RedisDB != 3 || !cfg.LogJSON {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.APIRateWindow != 10*time.Second {
		t.Fatalf("expected 10s window, got %v", cfg.APIRateWindow)
	}
}
