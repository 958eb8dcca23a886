package portal

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/enpartner/tarifscout/config"
	"github.com/enpartner/tarifscout/models"
)

// Portal drives the tariff portal through a shared headless browser.
// Every request gets its own page, created lazily and closed
// unconditionally when the request ends; pages are never reused across
// requests. Portal is safe for concurrent use.
type Portal struct {
	browser        *rod.Browser
	resolver       *Resolver
	browserCfg     config.BrowserConfig
	portalCfg      config.PortalConfig
	waits          config.WaitConfig
	probe          *probe
	sessions       chan struct{} // semaphore bounding concurrent sessions
	activeSessions atomic.Int32
	startTime      time.Time
}

// New launches a headless browser and prepares the selector resolver.
func New(browserCfg config.BrowserConfig, portalCfg config.PortalConfig, waits config.WaitConfig) (*Portal, error) {
	resolver, err := NewResolver()
	if err != nil {
		return nil, models.NewPortalError(models.ErrCodeConfiguration, "invalid selector table", err)
	}

	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	// The portal occasionally serves a degraded page to obvious bots.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewPortalError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewPortalError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	maxSessions := browserCfg.MaxSessions
	if maxSessions < 1 {
		maxSessions = 1
	}

	return &Portal{
		browser:    browser,
		resolver:   resolver,
		browserCfg: browserCfg,
		portalCfg:  portalCfg,
		waits:      waits,
		probe:      newProbe(portalCfg.BaseURL, browserCfg.DefaultProxy),
		sessions:   make(chan struct{}, maxSessions),
		startTime:  time.Now(),
	}, nil
}

// checkCredentials verifies the broker login is configured. It runs before
// any browser action so a misconfigured deployment fails fast with zero
// side effects.
func (p *Portal) checkCredentials() error {
	if p.portalCfg.Username == "" || p.portalCfg.Password == "" {
		return models.NewPortalError(models.ErrCodeConfiguration,
			"portal credentials missing: set TARIFSCOUT_PORTAL_USER and TARIFSCOUT_PORTAL_PASS", nil)
	}
	return nil
}

// acquireSession blocks until a session slot is free or ctx expires.
// The returned release function must be called exactly once.
func (p *Portal) acquireSession(ctx context.Context) (func(), error) {
	select {
	case p.sessions <- struct{}{}:
	case <-ctx.Done():
		return nil, models.NewPortalError(models.ErrCodeInternal,
			"timed out waiting for a free browser session", ctx.Err())
	}
	p.activeSessions.Add(1)
	return func() {
		p.activeSessions.Add(-1)
		<-p.sessions
	}, nil
}

// pageURL joins the portal base URL with a page path.
func (p *Portal) pageURL(path string) string {
	u, err := url.Parse(p.portalCfg.BaseURL)
	if err != nil {
		return p.portalCfg.BaseURL + path
	}
	return u.JoinPath(path).String()
}

// ActiveSessions reports how many browser sessions are currently open.
func (p *Portal) ActiveSessions() int {
	return int(p.activeSessions.Load())
}

// Uptime reports how long the portal engine has been running.
func (p *Portal) Uptime() time.Duration {
	return time.Since(p.startTime)
}

// CheckReachable probes the portal over plain HTTP without opening a
// browser session. Used by the health endpoint.
func (p *Portal) CheckReachable(ctx context.Context) (bool, string) {
	title, err := p.probe.fetchTitle(ctx)
	if err != nil {
		slog.Warn("portal reachability probe failed", "url", p.portalCfg.BaseURL, "error", err)
		return false, ""
	}
	return true, title
}

// Close kills the browser process. Call on graceful shutdown to prevent
// zombie Chrome processes.
func (p *Portal) Close() {
	slog.Info("portal engine shutting down: closing browser")
	p.browser.MustClose()
	slog.Info("portal engine shutdown complete")
}
