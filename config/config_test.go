package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Server.Mode)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless default should be true")
	}
	if cfg.Browser.MaxSessions != 4 {
		t.Errorf("MaxSessions = %d, want 4", cfg.Browser.MaxSessions)
	}
	if cfg.Portal.BaseURL != "https://portal-energypartner.de" {
		t.Errorf("BaseURL = %q", cfg.Portal.BaseURL)
	}
	if cfg.Portal.MaxTariffs != 20 {
		t.Errorf("MaxTariffs = %d, want 20", cfg.Portal.MaxTariffs)
	}
	if cfg.Waits.CascadeTimeout != 5*time.Second {
		t.Errorf("CascadeTimeout = %v, want 5s", cfg.Waits.CascadeTimeout)
	}
	if cfg.Waits.SettleDelay != 1500*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 1.5s", cfg.Waits.SettleDelay)
	}
	if !cfg.Auth.Enabled {
		t.Error("Auth.Enabled default should be true")
	}
	if cfg.RateLimit.RequestsPerSecond != 1.0 || cfg.RateLimit.Burst != 3 {
		t.Errorf("rate limit defaults = %v rps, burst %d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	if cfg.Cache.MaxEntries != 500 {
		t.Errorf("Cache.MaxEntries = %d, want 500", cfg.Cache.MaxEntries)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TARIFSCOUT_PORT", "9090")
	t.Setenv("TARIFSCOUT_MODE", "debug")
	t.Setenv("TARIFSCOUT_HEADLESS", "false")
	t.Setenv("TARIFSCOUT_MAX_SESSIONS", "2")
	t.Setenv("TARIFSCOUT_PORTAL_USER", "broker")
	t.Setenv("TARIFSCOUT_PORTAL_PASS", "secret")
	t.Setenv("TARIFSCOUT_CASCADE_TIMEOUT", "8s")
	t.Setenv("TARIFSCOUT_RATE_RPS", "2.5")
	t.Setenv("TARIFSCOUT_API_KEYS", "key-a, key-b,")
	t.Setenv("TARIFSCOUT_CORS_ORIGINS", "https://n8n.example.com")

	cfg := Load()

	if cfg.Server.Port != 9090 || cfg.Server.Mode != "debug" {
		t.Errorf("server overrides = %d/%s", cfg.Server.Port, cfg.Server.Mode)
	}
	if cfg.Browser.Headless {
		t.Error("Headless override not applied")
	}
	if cfg.Browser.MaxSessions != 2 {
		t.Errorf("MaxSessions = %d, want 2", cfg.Browser.MaxSessions)
	}
	if cfg.Portal.Username != "broker" || cfg.Portal.Password != "secret" {
		t.Error("portal credentials not loaded from environment")
	}
	if cfg.Waits.CascadeTimeout != 8*time.Second {
		t.Errorf("CascadeTimeout = %v, want 8s", cfg.Waits.CascadeTimeout)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RateLimit.RequestsPerSecond)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0] != "key-a" || cfg.Auth.APIKeys[1] != "key-b" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://n8n.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestEnvHelpersIgnoreMalformed(t *testing.T) {
	t.Setenv("TARIFSCOUT_PORT", "not-a-number")
	t.Setenv("TARIFSCOUT_HEADLESS", "maybe")
	t.Setenv("TARIFSCOUT_CASCADE_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("malformed int fell through to %d", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Error("malformed bool should keep the default")
	}
	if cfg.Waits.CascadeTimeout != 5*time.Second {
		t.Errorf("malformed duration fell through to %v", cfg.Waits.CascadeTimeout)
	}
}
