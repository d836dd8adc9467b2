package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig should fail without DATABASE_URL")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("QUOTA_COOLDOWN_SECONDS", "")
	t.Setenv("SWEEP_INTERVAL_HOURS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.QuotaCooldown != time.Hour {
		t.Fatalf("QuotaCooldown = %v, want 1h", cfg.QuotaCooldown)
	}
	if cfg.SweepInterval != 24*time.Hour {
		t.Fatalf("SweepInterval = %v, want 24h", cfg.SweepInterval)
	}
	if cfg.GeminiModel == "" {
		t.Fatal("GeminiModel should have a default")
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Fatal("AllowedOrigins should have a default")
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("QUOTA_COOLDOWN_SECONDS", "900")
	t.Setenv("WORKER_POLL_INTERVAL_SECONDS", "5")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.QuotaCooldown != 15*time.Minute {
		t.Fatalf("QuotaCooldown = %v, want 15m", cfg.QuotaCooldown)
	}
	if cfg.WorkerPollInterval != 5*time.Second {
		t.Fatalf("WorkerPollInterval = %v, want 5s", cfg.WorkerPollInterval)
	}
	if cfg.RateLimitPerMin != 10 {
		t.Fatalf("RateLimitPerMin = %d, want 10", cfg.RateLimitPerMin)
	}
}
