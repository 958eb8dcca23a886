package portal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/enpartner/tarifscout/models"
)

// runCascade fills the dependent-field chain of the calculator form:
//
//	zip → city → street → house number → grid operator → consumption
//
// Each select in the chain is populated by the portal via AJAX after the
// previous field commits; the navigator waits for every link before
// advancing. Any wait that elapses is fatal for the request — everything
// downstream depends on the chain completing in order.
func (p *Portal) runCascade(pg *rod.Page, req *models.ScrapeRequest) error {
	// Zip. The portal's listener only fires on real keystrokes, so the
	// value is typed character by character, then committed with a blur.
	zipEl, _, err := p.resolver.Resolve(pg, FieldZip)
	if err != nil {
		return stalled(FieldZip, err)
	}
	if err := p.typePaced(zipEl, req.PostalCode); err != nil {
		return stalled(FieldZip, err)
	}
	if err := commitField(zipEl); err != nil {
		return stalled(FieldZip, err)
	}

	// City options arrive asynchronously once the zip commits.
	if err := p.waitOptions(pg, FieldCity); err != nil {
		return stalled(FieldCity, err)
	}
	if err := p.selectOption(pg, FieldCity, req.City); err != nil {
		return err
	}

	// Streets depend on the chosen city.
	if err := p.waitOptions(pg, FieldStreet); err != nil {
		return stalled(FieldStreet, err)
	}
	if err := p.selectOption(pg, FieldStreet, req.Street); err != nil {
		return err
	}

	// House number commits the address and triggers grid-operator lookup.
	numEl, _, err := p.resolver.Resolve(pg, FieldHouseNumber)
	if err != nil {
		return stalled(FieldHouseNumber, err)
	}
	if err := setValue(numEl, req.HouseNumber); err != nil {
		return stalled(FieldHouseNumber, err)
	}
	if err := commitField(numEl); err != nil {
		return stalled(FieldHouseNumber, err)
	}

	// Grid operator resolution is the slowest link in the chain.
	if err := p.waitGridOperator(pg); err != nil {
		return stalled(FieldGridOperator, err)
	}

	// Consumption is independent of the address chain.
	consEl, _, err := p.resolver.Resolve(pg, FieldConsumption)
	if err != nil {
		return stalled(FieldConsumption, err)
	}
	if err := setValue(consEl, strconv.Itoa(req.AnnualConsumption)); err != nil {
		return stalled(FieldConsumption, err)
	}
	return nil
}

// stalled wraps a cascade step failure, naming the field that never became
// ready so the caller can tell a stalled portal from bad input.
func stalled(field Field, err error) *models.PortalError {
	return models.NewFieldError(models.ErrCodeCascadeStalled,
		fmt.Sprintf("dependent field %q never became ready", field), string(field), err)
}

// typePaced clears the field and types the value character by character
// with a fixed inter-key delay.
func (p *Portal) typePaced(el *rod.Element, value string) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	for i, r := range value {
		// The first keystroke replaces the selected old value.
		if err := el.Input(string(r)); err != nil {
			return fmt.Errorf("typing character %d: %w", i, err)
		}
		select {
		case <-time.After(p.waits.TypeDelay):
		case <-el.Page().GetContext().Done():
			return el.Page().GetContext().Err()
		}
	}
	return nil
}

// setValue clears the field and inserts the value in one step (for fields
// without keystroke-sensitive listeners).
func setValue(el *rod.Element, value string) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

// commitField shifts focus away so the portal sees a "value committed"
// blur event and fires its AJAX listener.
func commitField(el *rod.Element) error {
	_, err := el.Eval(`() => { this.dispatchEvent(new Event('change', { bubbles: true })); this.blur(); }`)
	return err
}

// waitOptions blocks until the field's select grows beyond its
// placeholder-only state, bounded by the cascade timeout.
func (p *Portal) waitOptions(pg *rod.Page, field Field) error {
	return pg.Timeout(p.waits.CascadeTimeout).Wait(rod.Eval(
		`(sels) => sels.some(s => {
			const el = document.querySelector(s);
			return el && el.options && el.options.length > 1;
		})`,
		p.resolver.Candidates(field),
	))
}

// waitGridOperator blocks until the grid-operator field carries a real
// operator. Depending on the site revision it is either a select that
// grows past its placeholder or a readonly input that receives a value.
func (p *Portal) waitGridOperator(pg *rod.Page) error {
	return pg.Timeout(p.waits.CascadeTimeout).Wait(rod.Eval(
		`(sels) => sels.some(s => {
			const el = document.querySelector(s);
			if (!el) return false;
			if (el.tagName === 'SELECT') return el.options.length > 1;
			return el.value !== '' && el.value !== 'Kein Netzbetreiber';
		})`,
		p.resolver.Candidates(FieldGridOperator),
	))
}

// selectOption picks an option on a populated select. With an explicit
// wanted label it selects the matching option and reports a
// SELECTION_MISMATCH when no option matches — bad input, not portal
// unavailability. Without one it takes the first non-placeholder option.
func (p *Portal) selectOption(pg *rod.Page, field Field, wanted string) error {
	el, _, err := p.resolver.Resolve(pg, field)
	if err != nil {
		return stalled(field, err)
	}

	res, err := el.Eval(`() => Array.from(this.options).map(o => o.textContent.trim())`)
	if err != nil {
		return stalled(field, err)
	}

	labels := make([]string, 0, len(res.Value.Arr()))
	for _, v := range res.Value.Arr() {
		labels = append(labels, v.Str())
	}

	index, err := chooseOption(field, labels, wanted)
	if err != nil {
		var perr *models.PortalError
		if errors.As(err, &perr) {
			return perr
		}
		return stalled(field, err)
	}

	_, err = el.Eval(
		`(i) => { this.selectedIndex = i; this.dispatchEvent(new Event('change', { bubbles: true })); }`,
		index,
	)
	if err != nil {
		return stalled(field, err)
	}
	return nil
}

// chooseOption picks the option index to select from a populated select's
// labels. With an explicit wanted label it matches case-insensitively after
// trimming; no match is a SELECTION_MISMATCH naming the field — caller
// input problem, distinct from a stalled portal. Without one it defaults to
// index 1: index 0 is the placeholder, and the options wait guaranteed at
// least one real option after it.
func chooseOption(field Field, labels []string, wanted string) (int, error) {
	index := 1
	if wanted != "" {
		index = -1
		for i, label := range labels {
			if strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(wanted)) {
				index = i
				break
			}
		}
		if index < 0 {
			return 0, models.NewFieldError(models.ErrCodeSelectionMismatch,
				fmt.Sprintf("requested %s %q is not among the portal's options", field, wanted),
				string(field), nil)
		}
	}
	if index >= len(labels) {
		return 0, fmt.Errorf("select has no option at index %d", index)
	}
	return index, nil
}
