package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Portal    PortalConfig
	Waits     WaitConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// CORSOrigins lists allowed CORS origins. Default: ["*"] — the
	// service typically sits behind an n8n instance on another host.
	CORSOrigins []string
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for browser traffic and the
	// reachability probe.
	DefaultProxy string

	// MaxSessions caps concurrent scrape/apply sessions. Each session owns
	// one page; requests beyond the cap wait for a slot.
	MaxSessions int // default: 4
}

// PortalConfig describes the target portal. Element identifiers live in the
// selector table, not here; this is the page-level surface.
type PortalConfig struct {
	// BaseURL is the portal origin.
	BaseURL string // default: "https://portal-energypartner.de"

	// CalculatorPath is the tariff calculator page.
	CalculatorPath string // default: "/tarifvergleich"

	// LoginPath is the broker login page.
	LoginPath string // default: "/login"

	// ApplyPath is the application form page; the tariff id is appended as
	// a query parameter.
	ApplyPath string // default: "/antrag"

	// Username and Password are the broker credentials. Loaded once at
	// process start; their absence is a configuration error reported
	// before any browser session is opened.
	Username string
	Password string

	// ScreenshotDir is where diagnostic screenshots are persisted.
	ScreenshotDir string // default: "./screenshots"

	// MaxTariffs bounds how many result items are extracted per request.
	MaxTariffs int // default: 20
}

// WaitConfig holds the timing budget for the portal's asynchronous UI.
type WaitConfig struct {
	// CascadeTimeout bounds each dependent-field wait (city options after
	// zip, streets after city, grid operator after house number).
	CascadeTimeout time.Duration // default: 5s

	// ResultsTimeout bounds the wait for the result container after
	// submission.
	ResultsTimeout time.Duration // default: 12s

	// SettleDelay is the fixed wait after the result container first
	// appears; the list keeps mutating briefly while late offers render.
	SettleDelay time.Duration // default: 1500ms

	// DrilldownDelay is the fixed wait after opening a commission
	// disclosure before reading its fields.
	DrilldownDelay time.Duration // default: 800ms

	// TypeDelay is the per-character pacing for fields whose listeners
	// need real keystroke timing (the zip field).
	TypeDelay time.Duration // default: 40ms

	// NavigationTimeout bounds a single page navigation.
	NavigationTimeout time.Duration // default: 15s

	// ConfirmationTimeout bounds the wait for the application
	// confirmation page after submitting an application.
	ConfirmationTimeout time.Duration // default: 15s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the scrape response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// WebhookConfig controls outbound result webhooks.
type WebhookConfig struct {
	// Secret signs webhook payloads (HMAC-SHA256). Empty disables signing.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        envOr("TARIFSCOUT_HOST", "0.0.0.0"),
			Port:        envIntOr("TARIFSCOUT_PORT", 8080),
			Mode:        envOr("TARIFSCOUT_MODE", "release"),
			CORSOrigins: envSliceOr("TARIFSCOUT_CORS_ORIGINS", []string{"*"}),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("TARIFSCOUT_HEADLESS", true),
			NoSandbox:    envBoolOr("TARIFSCOUT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("TARIFSCOUT_BROWSER_BIN"),
			DefaultProxy: os.Getenv("TARIFSCOUT_PROXY"),
			MaxSessions:  envIntOr("TARIFSCOUT_MAX_SESSIONS", 4),
		},
		Portal: PortalConfig{
			BaseURL:        envOr("TARIFSCOUT_PORTAL_URL", "https://portal-energypartner.de"),
			CalculatorPath: envOr("TARIFSCOUT_CALC_PATH", "/tarifvergleich"),
			LoginPath:      envOr("TARIFSCOUT_LOGIN_PATH", "/login"),
			ApplyPath:      envOr("TARIFSCOUT_APPLY_PATH", "/antrag"),
			Username:       os.Getenv("TARIFSCOUT_PORTAL_USER"),
			Password:       os.Getenv("TARIFSCOUT_PORTAL_PASS"),
			ScreenshotDir:  envOr("TARIFSCOUT_SCREENSHOT_DIR", "./screenshots"),
			MaxTariffs:     envIntOr("TARIFSCOUT_MAX_TARIFFS", 20),
		},
		Waits: WaitConfig{
			CascadeTimeout:      envDurationOr("TARIFSCOUT_CASCADE_TIMEOUT", 5*time.Second),
			ResultsTimeout:      envDurationOr("TARIFSCOUT_RESULTS_TIMEOUT", 12*time.Second),
			SettleDelay:         envDurationOr("TARIFSCOUT_SETTLE_DELAY", 1500*time.Millisecond),
			DrilldownDelay:      envDurationOr("TARIFSCOUT_DRILLDOWN_DELAY", 800*time.Millisecond),
			TypeDelay:           envDurationOr("TARIFSCOUT_TYPE_DELAY", 40*time.Millisecond),
			NavigationTimeout:   envDurationOr("TARIFSCOUT_NAV_TIMEOUT", 15*time.Second),
			ConfirmationTimeout: envDurationOr("TARIFSCOUT_CONFIRM_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("TARIFSCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("TARIFSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("TARIFSCOUT_RATE_RPS", 1.0),
			Burst:             envIntOr("TARIFSCOUT_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("TARIFSCOUT_CACHE_MAX_ENTRIES", 500),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("TARIFSCOUT_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("TARIFSCOUT_LOG_LEVEL", "info"),
			Format: envOr("TARIFSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
