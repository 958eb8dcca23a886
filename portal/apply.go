package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/enpartner/tarifscout/models"
)

// applyFieldSelectors maps application-form values to their input
// selectors. Unlike the calculator, the application form has kept stable
// name attributes across site revisions, so no candidate lists are needed.
var applyFieldSelectors = []struct {
	selector string
	value    func(r *models.ApplicationRequest) string
}{
	{"input[name='vorname']", func(r *models.ApplicationRequest) string { return r.FirstName }},
	{"input[name='nachname']", func(r *models.ApplicationRequest) string { return r.LastName }},
	{"input[name='strasse']", func(r *models.ApplicationRequest) string { return r.Street }},
	{"input[name='hausnummer']", func(r *models.ApplicationRequest) string { return r.HouseNumber }},
	{"input[name='plz']", func(r *models.ApplicationRequest) string { return r.PostalCode }},
	{"input[name='ort']", func(r *models.ApplicationRequest) string { return r.City }},
	{"input[name='geburtsdatum']", func(r *models.ApplicationRequest) string { return r.BirthDate }},
	{"input[name='telefon']", func(r *models.ApplicationRequest) string { return r.Phone }},
	{"input[name='email']", func(r *models.ApplicationRequest) string { return r.Email }},
	{"input[name='iban']", func(r *models.ApplicationRequest) string { return r.IBAN }},
	{"input[name='kontoinhaber']", func(r *models.ApplicationRequest) string { return r.AccountHolder }},
}

// consentSelectors are the checkboxes the portal requires before submission.
var consentSelectors = []string{
	"input[name='agb']",
	"input[name='datenschutz']",
}

// DoApply submits a supply application for a tariff. The session
// lifecycle mirrors DoScrape: credential check and validation before any
// browser action, one fresh page, guaranteed teardown on every exit path.
func (p *Portal) DoApply(ctx context.Context, req *models.ApplicationRequest) (*models.ApplicationResponse, error) {
	totalStart := time.Now()

	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	req.Defaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	release, err := p.acquireSession(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	page, err := stealth.Page(p.browser)
	if err != nil {
		return nil, models.NewPortalError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("session teardown: page close failed", "error", closeErr)
		}
	}()

	router := mountHijack(page)
	defer func() { _ = router.Stop() }()

	pg := page.Context(ctx)
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Accept-Language": gson.New("de-DE,de;q=0.9")},
	}.Call(pg)

	if err := p.login(pg); err != nil {
		return nil, err
	}

	if err := p.fillApplication(pg, req); err != nil {
		return nil, err
	}

	// Snapshot the filled form before committing; if the portal rejects
	// the application the screenshot shows what was actually submitted.
	p.captureArtifact(page, "before-apply")

	number, err := p.submitApplication(pg, page)
	if err != nil {
		return nil, err
	}

	slog.Info("application submitted",
		"tariff_id", req.TariffID,
		"application_number", number,
		"total_ms", time.Since(totalStart).Milliseconds(),
	)

	return &models.ApplicationResponse{
		Success:           true,
		ApplicationNumber: number,
		Message:           "application submitted",
		Customer:          req.FirstName + " " + req.LastName,
		Email:             req.Email,
		Timing: models.TimingInfo{
			TotalMs: time.Since(totalStart).Milliseconds(),
		},
	}, nil
}

// fillApplication opens the application form for the tariff and fills
// customer, bank and delivery data.
func (p *Portal) fillApplication(pg *rod.Page, req *models.ApplicationRequest) error {
	target := p.pageURL(p.portalCfg.ApplyPath) + "?tariff=" + url.QueryEscape(req.TariffID)
	if err := pg.Navigate(target); err != nil {
		return categorizeError(err, "navigation to application form failed")
	}
	if err := p.waitAnyPresent(pg, FieldApplyForm, p.waits.NavigationTimeout); err != nil {
		return models.NewFieldError(models.ErrCodeApplication,
			"application form did not appear; is the tariff id still valid?",
			string(FieldApplyForm), err)
	}

	if err := p.selectByLabel(pg, "select[name='anrede']", req.Salutation); err != nil {
		return models.NewPortalError(models.ErrCodeApplication, "failed to set salutation", err)
	}

	for _, f := range applyFieldSelectors {
		has, el, err := pg.Has(f.selector)
		if err != nil {
			return categorizeError(err, "application form lookup failed")
		}
		if !has {
			return models.NewPortalError(models.ErrCodeApplication,
				fmt.Sprintf("application form field %q is missing", f.selector), nil)
		}
		if err := setValue(el, f.value(req)); err != nil {
			return models.NewPortalError(models.ErrCodeApplication,
				fmt.Sprintf("failed to fill %q", f.selector), err)
		}
	}

	if req.DeliveryStart == models.DeliveryASAP {
		if err := p.checkBox(pg, "input[name='lieferbeginn'][value='schnellstmoeglich']"); err != nil {
			return models.NewPortalError(models.ErrCodeApplication, "failed to set delivery start", err)
		}
	} else {
		has, el, err := pg.Has("input[name='lieferbeginn_datum']")
		if err == nil && has {
			if err := setValue(el, req.DeliveryStart); err != nil {
				return models.NewPortalError(models.ErrCodeApplication, "failed to set delivery date", err)
			}
		}
	}

	for _, sel := range consentSelectors {
		if err := p.checkBox(pg, sel); err != nil {
			return models.NewPortalError(models.ErrCodeApplication,
				fmt.Sprintf("failed to confirm consent %q", sel), err)
		}
	}
	return nil
}

// submitApplication fires the form and waits for the confirmation page,
// then reads the application number.
func (p *Portal) submitApplication(pg *rod.Page, rawPage *rod.Page) (string, error) {
	has, btn, err := pg.Has("form#antragsformular button[type='submit']")
	if err != nil || !has {
		return "", models.NewPortalError(models.ErrCodeApplication, "application submit button not found", err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", models.NewPortalError(models.ErrCodeApplication, "application submit click failed", err)
	}

	err = pg.Timeout(p.waits.ConfirmationTimeout).Wait(rod.Eval(
		`(frag) => window.location.pathname.includes(frag)`, "bestaetigung",
	))
	if err != nil {
		artifact := p.captureArtifact(rawPage, "apply-failed")
		perr := models.NewPortalError(models.ErrCodeApplication,
			fmt.Sprintf("confirmation page did not appear within %s", p.waits.ConfirmationTimeout), err)
		perr.Artifact = artifact
		return "", perr
	}

	numEl, _, err := p.resolver.Resolve(pg, FieldApplicationNumber)
	if err != nil {
		// The application went through; only the number extraction failed.
		slog.Warn("confirmation page has no application number element", "error", err)
		return "", nil
	}
	number, err := numEl.Text()
	if err != nil {
		slog.Warn("failed to read application number", "error", err)
		return "", nil
	}
	return number, nil
}

// selectByLabel picks a select option by visible label.
func (p *Portal) selectByLabel(pg *rod.Page, selector, label string) error {
	has, el, err := pg.Has(selector)
	if err != nil {
		return err
	}
	if !has {
		return fmt.Errorf("select %q is missing", selector)
	}
	return el.Select([]string{label}, true, rod.SelectorTypeText)
}

// checkBox ensures a checkbox or radio control is checked.
func (p *Portal) checkBox(pg *rod.Page, selector string) error {
	has, el, err := pg.Has(selector)
	if err != nil {
		return err
	}
	if !has {
		return fmt.Errorf("checkbox %q is missing", selector)
	}
	_, err = el.Eval(`() => { if (!this.checked) this.click(); }`)
	return err
}
