package portal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/enpartner/tarifscout/models"
)

// DoScrape runs the full tariff-comparison pipeline for one request.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Credential check      – fails fast with zero side effects
//  2. Request validation    – postal code format, consumption bounds
//  3. Timeout guard         – hard deadline on the entire operation
//  4. Session slot          – bounded concurrency, one page per request
//  5. Open page             – fresh stealth page, DEFER: guaranteed close
//  6. Hijack mount          – drop images/fonts/trackers (before navigation!)
//  7. Context binding       – propagate the deadline to all Rod operations
//  8. Broker login          – commission data is only served to brokers
//  9. Calculator            – navigate, wait for the form root
//  10. Cascade              – zip → city → street → house number → operator
//  11. Submit + wait        – result container, bounded wait + settle delay
//  12. Extract              – goquery over the settled result list
//  13. Drill-down           – optional per-tariff commission disclosure
//  14. Assemble             – response in rendered order
//
// The page close in step 5 uses the ORIGINAL page reference (without the
// request context), so teardown succeeds even after the deadline expired.
// It runs exactly once on every exit path.
func (p *Portal) DoScrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	totalStart := time.Now()

	// ── 1. Credential check ──────────────────────────────────────────
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	// ── 2. Request validation ────────────────────────────────────────
	req.Defaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// ── 3. Timeout guard ─────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	// ── 4. Session slot ──────────────────────────────────────────────
	release, err := p.acquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	// ── 5. Open page ─────────────────────────────────────────────────
	page, err := stealth.Page(p.browser)
	if err != nil {
		return nil, models.NewPortalError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("session teardown: page close failed", "error", closeErr)
		}
	}()

	// ── 6. Hijack mount ──────────────────────────────────────────────
	router := mountHijack(page)
	defer func() { _ = router.Stop() }()

	// ── 7. Context binding ───────────────────────────────────────────
	pg := page.Context(ctx)

	// The portal localizes option labels by Accept-Language; pin German so
	// label matching stays deterministic.
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Accept-Language": gson.New("de-DE,de;q=0.9")},
	}.Call(pg)

	// ── 8. Broker login ──────────────────────────────────────────────
	if err := p.login(pg); err != nil {
		return nil, err
	}

	// ── 9. Calculator page ───────────────────────────────────────────
	if err := p.openCalculator(pg); err != nil {
		return nil, err
	}

	// ── 10. Cascade ──────────────────────────────────────────────────
	cascadeStart := time.Now()
	if err := p.runCascade(pg, req); err != nil {
		return nil, err
	}
	cascadeMs := time.Since(cascadeStart).Milliseconds()

	// ── 11. Submit + wait for results ────────────────────────────────
	resultsStart := time.Now()
	if err := p.submitAndWait(pg, page); err != nil {
		return nil, err
	}
	resultsMs := time.Since(resultsStart).Milliseconds()

	// ── 12. Extract ──────────────────────────────────────────────────
	extractStart := time.Now()
	html, err := pg.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to read result page HTML")
	}
	tariffs := p.extractTariffs(html, p.portalCfg.MaxTariffs)

	// ── 13. Commission drill-down ────────────────────────────────────
	if req.IncludeCommission && len(tariffs) > 0 {
		p.drilldownCommissions(pg, tariffs)
	}
	extractMs := time.Since(extractStart).Milliseconds()

	slog.Info("scrape completed",
		"postal_code", req.PostalCode,
		"tariffs", len(tariffs),
		"commission", req.IncludeCommission,
		"total_ms", time.Since(totalStart).Milliseconds(),
	)

	// ── 14. Assemble ─────────────────────────────────────────────────
	return &models.ScrapeResponse{
		Success:             true,
		Tariffs:             tariffs,
		Count:               len(tariffs),
		PreviousProvider:    req.PreviousProvider,
		PreviousTariff:      req.PreviousTariff,
		PreviousAnnualPrice: req.PreviousAnnualPrice,
		Timing: models.TimingInfo{
			TotalMs:   time.Since(totalStart).Milliseconds(),
			CascadeMs: cascadeMs,
			ResultsMs: resultsMs,
			ExtractMs: extractMs,
		},
	}, nil
}

// openCalculator navigates to the tariff calculator and waits until the
// form root is present.
func (p *Portal) openCalculator(pg *rod.Page) error {
	if err := pg.Navigate(p.pageURL(p.portalCfg.CalculatorPath)); err != nil {
		return categorizeError(err, "navigation to calculator page failed")
	}
	if err := pg.WaitLoad(); err != nil {
		return categorizeError(err, "calculator page did not finish loading")
	}
	if err := p.waitAnyPresent(pg, FieldFormRoot, p.waits.NavigationTimeout); err != nil {
		return models.NewFieldError(models.ErrCodeNavigation,
			"calculator form did not appear", string(FieldFormRoot), err)
	}
	return nil
}

// waitAnyPresent blocks until any candidate selector of the field matches
// at least one element in the DOM, or the bounded wait elapses. Presence
// is enough here: the portal renders these containers visible.
func (p *Portal) waitAnyPresent(pg *rod.Page, field Field, timeout time.Duration) error {
	return pg.Timeout(timeout).Wait(rod.Eval(
		`(sels) => sels.some(s => document.querySelectorAll(s).length > 0)`,
		p.resolver.Candidates(field),
	))
}

// sleepSettle waits a fixed settle delay, honoring the page context.
func sleepSettle(pg *rod.Page, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-pg.GetContext().Done():
		return pg.GetContext().Err()
	}
}

// categorizeError wraps raw errors into typed PortalErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.PortalError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewPortalError(models.ErrCodeNavigation, msg+": deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return models.NewPortalError(models.ErrCodeNavigation, "request canceled", err)
	default:
		return models.NewPortalError(models.ErrCodeNavigation, msg, err)
	}
}
