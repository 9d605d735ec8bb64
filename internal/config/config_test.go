package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "")
		t.Setenv("INGEST_INTERVAL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("expected port 8080, got %s", cfg.Port)
		}
		if cfg.DBDriver != "postgres" {
			t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
		}
		if cfg.IngestInterval != 30*time.Minute {
			t.Errorf("expected 30m ingest interval, got %s", cfg.IngestInterval)
		}
		if cfg.DigestCron != "0 8 * * *" {
			t.Errorf("unexpected digest cron %q", cfg.DigestCron)
		}
	})

	t.Run("reads_bot_tokens", func(t *testing.T) {
		t.Setenv("NEWS_BOT_TOKEN", "123:abc")
		t.Setenv("STAFF_BOT_TOKEN", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Bots.News != "123:abc" {
			t.Errorf("expected news token, got %q", cfg.Bots.News)
		}
		if cfg.Bots.Staff != "" {
			t.Errorf("expected empty staff token, got %q", cfg.Bots.Staff)
		}
	})

	t.Run("splits_cors_origins", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, ,https://cms.jbcnews.example")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://cms.jbcnews.example" {
			t.Errorf("unexpected origins %v", cfg.CORSOrigins)
		}
	})

	t.Run("invalid_duration_falls_back", func(t *testing.T) {
		t.Setenv("HTTP_TIMEOUT", "soon")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HTTPTimeout != 10*time.Second {
			t.Errorf("expected 10s fallback, got %s", cfg.HTTPTimeout)
		}
	})

	t.Run("rejects_unknown_driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")

		if _, err := Load(); err == nil {
			t.Fatal("expected validation error for unknown driver")
		}
	})

	t.Run("rejects_tiny_ingest_interval", func(t *testing.T) {
		t.Setenv("INGEST_INTERVAL", "5s")

		if _, err := Load(); err == nil {
			t.Fatal("expected validation error for 5s interval")
		}
	})
}
