package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("default port wrong: %q", cfg.Port)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("default cache ttl wrong: %v", cfg.CacheTTL)
	}
	if cfg.HubSpotBaseURL == "" || cfg.LiveChatBaseURL == "" {
		t.Fatalf("connector base urls must default")
	}
}

func TestLoadHonorsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("PORT env ignored: %q", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("REDIS_ADDR env ignored: %q", cfg.RedisAddr)
	}
}
