package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("FREE_TIER_MONTHLY_LIMIT", "")
	t.Setenv("ADVISORY_TIMEOUT", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.FreeTierMonthlyLimit != 3 {
		t.Fatalf("expected default free tier limit 3, got %d", cfg.FreeTierMonthlyLimit)
	}
	if cfg.AdvisoryTimeout != 30*time.Second {
		t.Fatalf("expected default advisory timeout, got %s", cfg.AdvisoryTimeout)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Fatalf("expected default gemini model, got %s", cfg.GeminiModelID)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("FREE_TIER_MONTHLY_LIMIT", "5")
	t.Setenv("ADVISORY_TIMEOUT", "10s")
	t.Setenv("DOCTOR_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_PER_SEC", "2.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.FreeTierMonthlyLimit != 5 {
		t.Fatalf("expected free tier limit override, got %d", cfg.FreeTierMonthlyLimit)
	}
	if cfg.AdvisoryTimeout != 10*time.Second {
		t.Fatalf("expected advisory timeout override, got %s", cfg.AdvisoryTimeout)
	}
	if cfg.DoctorCacheTTL != 90*time.Second {
		t.Fatalf("expected doctor cache ttl override, got %s", cfg.DoctorCacheTTL)
	}
	if cfg.RateLimitPerSec != 2.5 {
		t.Fatalf("expected rate limit override, got %f", cfg.RateLimitPerSec)
	}
}
