package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timezone != "Asia/Jakarta" {
		t.Fatalf("expected default timezone Asia/Jakarta, got %s", cfg.Timezone)
	}
	if cfg.RunTimeout != 10*time.Minute {
		t.Fatalf("expected default run timeout 10m, got %s", cfg.RunTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DUNNING_TIMEZONE", "Asia/Yangon")
	t.Setenv("DUNNING_RUN_TIMEOUT", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timezone != "Asia/Yangon" {
		t.Fatalf("expected Asia/Yangon, got %s", cfg.Timezone)
	}
	if cfg.RunTimeout != 30*time.Minute {
		t.Fatalf("expected 30m, got %s", cfg.RunTimeout)
	}
}

func TestValidateBadTimezone(t *testing.T) {
	t.Setenv("DUNNING_TIMEZONE", "Not/A-Zone")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone, got nil")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	c := Config{Timezone: "Not/A-Zone"}
	if got := c.Location(); got != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", got)
	}
}

func TestEnvDurationInvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_DUR_BAD", "soon")
	if got := envDuration("TEST_DUR_BAD", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback 1m, got %s", got)
	}
}
