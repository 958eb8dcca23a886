package portal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"

	"github.com/enpartner/tarifscout/models"
)

// submitAndWait triggers the tariff computation and waits for the result
// container, then lets the list settle. rawPage is the page reference
// WITHOUT the request context: the diagnostic screenshot must still work
// after the bounded wait has expired.
//
// A results timeout is not retried. In practice it means either zero
// eligible tariffs for the address or a portal malfunction, and both need
// a human to look at the captured artifact.
func (p *Portal) submitAndWait(pg *rod.Page, rawPage *rod.Page) error {
	if err := p.clickField(pg, FieldSubmit); err != nil {
		return models.NewFieldError(models.ErrCodeNavigation,
			"submit control not found or not clickable", string(FieldSubmit), err)
	}

	err := pg.Timeout(p.waits.ResultsTimeout).Wait(rod.Eval(
		`(sels) => sels.some(s => document.querySelectorAll(s).length > 0)`,
		p.resolver.Candidates(FieldResultItem),
	))
	if err != nil {
		artifact := p.captureArtifact(rawPage, "no-results")
		perr := models.NewPortalError(models.ErrCodeNoResultsTimeout,
			fmt.Sprintf("no results appeared within %s after submission", p.waits.ResultsTimeout), err)
		perr.Artifact = artifact
		return perr
	}

	// Offers keep streaming in briefly after the first item renders.
	if err := sleepSettle(pg, p.waits.SettleDelay); err != nil {
		return categorizeError(err, "settle wait interrupted")
	}
	return nil
}

// captureArtifact persists a full-page screenshot for postmortem analysis
// and returns its path. Capture failures are logged, never fatal — the
// artifact is a side effect, not part of the payload.
func (p *Portal) captureArtifact(page *rod.Page, label string) string {
	data, err := page.Screenshot(true, nil)
	if err != nil {
		slog.Warn("diagnostic screenshot failed", "label", label, "error", err)
		return ""
	}

	if err := os.MkdirAll(p.portalCfg.ScreenshotDir, 0o755); err != nil {
		slog.Warn("cannot create screenshot dir", "dir", p.portalCfg.ScreenshotDir, "error", err)
		return ""
	}

	name := fmt.Sprintf("%s-%s.png", label, time.Now().Format("20060102-150405.000"))
	path := filepath.Join(p.portalCfg.ScreenshotDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("cannot write screenshot", "path", path, "error", err)
		return ""
	}

	slog.Info("diagnostic screenshot captured", "path", path)
	return path
}
