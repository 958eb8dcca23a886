package portal

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/enpartner/tarifscout/models"
)

// login signs the session in as a broker. The portal only exposes
// commission data and the application form to authenticated brokers, so
// every session starts here.
func (p *Portal) login(pg *rod.Page) error {
	if err := pg.Navigate(p.pageURL(p.portalCfg.LoginPath)); err != nil {
		return categorizeError(err, "navigation to login page failed")
	}
	if err := pg.WaitLoad(); err != nil {
		return categorizeError(err, "login page did not finish loading")
	}

	userEl, _, err := p.resolver.Resolve(pg, FieldLoginUser)
	if err != nil {
		return models.NewFieldError(models.ErrCodeLoginFailed,
			"login form has no username field", string(FieldLoginUser), err)
	}
	if err := userEl.Input(p.portalCfg.Username); err != nil {
		return models.NewPortalError(models.ErrCodeLoginFailed, "failed to enter username", err)
	}

	passEl, _, err := p.resolver.Resolve(pg, FieldLoginPass)
	if err != nil {
		return models.NewFieldError(models.ErrCodeLoginFailed,
			"login form has no password field", string(FieldLoginPass), err)
	}
	if err := passEl.Input(p.portalCfg.Password); err != nil {
		return models.NewPortalError(models.ErrCodeLoginFailed, "failed to enter password", err)
	}

	if err := p.clickField(pg, FieldLoginSubmit); err != nil {
		return models.NewPortalError(models.ErrCodeLoginFailed, "failed to submit login form", err)
	}

	// The portal redirects to the broker dashboard on success and re-renders
	// the login form on bad credentials.
	err = pg.Timeout(p.waits.NavigationTimeout).Wait(rod.Eval(
		`(frag) => window.location.pathname.includes(frag)`, "dashboard",
	))
	if err != nil {
		return models.NewPortalError(models.ErrCodeLoginFailed,
			"broker dashboard did not appear after login; check portal credentials", err)
	}
	return nil
}

// clickField resolves a logical field and clicks it.
func (p *Portal) clickField(pg *rod.Page, field Field) error {
	el, _, err := p.resolver.Resolve(pg, field)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}
