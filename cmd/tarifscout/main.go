package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enpartner/tarifscout/api"
	"github.com/enpartner/tarifscout/cache"
	"github.com/enpartner/tarifscout/config"
	"github.com/enpartner/tarifscout/portal"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("tarifscout starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"portal", cfg.Portal.BaseURL,
		"maxSessions", cfg.Browser.MaxSessions,
	)

	if cfg.Portal.Username == "" || cfg.Portal.Password == "" {
		// The service still starts (health stays useful), but every scrape
		// will fail fast until the credentials are configured.
		slog.Warn("portal credentials not configured; set TARIFSCOUT_PORTAL_USER and TARIFSCOUT_PORTAL_PASS")
	}

	// ── 3. Initialise portal engine (launches browser) ──────────────
	pt, err := portal.New(cfg.Browser, cfg.Portal, cfg.Waits)
	if err != nil {
		slog.Error("failed to initialise portal engine", "error", err)
		os.Exit(1)
	}
	defer pt.Close()

	// ── 4. Initialise response cache ────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(pt, cc, cfg)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight sessions can hold a browser page for up to a scrape
	// timeout; give them a short grace period before the browser dies.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// pt.Close() runs via defer — kills the Chrome process.
	slog.Info("tarifscout stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
