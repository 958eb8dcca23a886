package portal

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/go-rod/rod"
)

// Field is a logical form-field name. The pipeline only ever speaks in
// logical fields; the concrete element identifiers live in the selector
// table below, because the portal renames them between site revisions.
type Field string

// Logical fields of the calculator, login and application pages.
const (
	FieldFormRoot     Field = "form_root"
	FieldZip          Field = "zip"
	FieldCity         Field = "city"
	FieldStreet       Field = "street"
	FieldHouseNumber  Field = "house_number"
	FieldGridOperator Field = "grid_operator"
	FieldConsumption  Field = "consumption"
	FieldSubmit       Field = "submit"

	FieldResultList Field = "result_list"
	FieldResultItem Field = "result_item"

	FieldLoginUser   Field = "login_user"
	FieldLoginPass   Field = "login_pass"
	FieldLoginSubmit Field = "login_submit"

	FieldCommissionToggle Field = "commission_toggle"
	FieldCommission       Field = "commission"
	FieldSpecialBonus     Field = "special_bonus"
	FieldTotalCommission  Field = "total_commission"

	FieldApplyForm         Field = "apply_form"
	FieldApplicationNumber Field = "application_number"

	// Extraction-only fields, matched within one result item.
	FieldProvider     Field = "provider"
	FieldTariffName   Field = "tariff_name"
	FieldMonthlyPrice Field = "monthly_price"
	FieldAnnualPrice  Field = "annual_price"
	FieldBasePrice    Field = "base_price"
	FieldUsagePrice   Field = "usage_price"
	FieldContractTerm Field = "contract_term"
	FieldCancellation Field = "cancellation"
	FieldGuarantee    Field = "price_guarantee"
	FieldTariffID     Field = "tariff_id"
)

// defaultSelectors maps each logical field to its candidate CSS selectors in
// priority order. The first candidate present on the page wins. Primary
// entries are the identifiers the portal ships today; the fallbacks cover
// the renames observed across earlier site revisions.
var defaultSelectors = map[Field][]string{
	FieldFormRoot: {
		"#egon-embedded-ratecalc-form",
		"form.ratecalc-form",
	},
	FieldZip: {
		"#egon-embedded-ratecalc-form-field-zip",
		"input[name='zip']",
		"input[name='plz']",
	},
	FieldCity: {
		"#egon-embedded-ratecalc-form-field-city",
		"select[name='city']",
		"select[name='ort']",
	},
	FieldStreet: {
		"#egon-embedded-ratecalc-form-field-street",
		"select[name='street']",
		"select[name='strasse']",
	},
	FieldHouseNumber: {
		"#egon-embedded-ratecalc-form-field-street_number",
		"input[name='street_number']",
		"input[name='hausnummer']",
	},
	FieldGridOperator: {
		"#egon-embedded-ratecalc-form-field-netz_id",
		"select[name='netz_id']",
	},
	FieldConsumption: {
		"#egon-embedded-ratecalc-form-field-consum",
		"input[name='consum']",
		"input[name='verbrauch']",
	},
	FieldSubmit: {
		"#egon-embedded-ratecalc-form button[type='submit']",
		"button[type='submit']",
	},

	FieldResultList: {
		".tarif-results",
		".tariff-results",
	},
	FieldResultItem: {
		".tarif-result",
		".tariff-result",
	},

	FieldLoginUser: {
		"input[name='username']",
		"#login-username",
	},
	FieldLoginPass: {
		"input[name='password']",
		"#login-password",
	},
	FieldLoginSubmit: {
		"form button[type='submit']",
		"button[type='submit']",
	},

	FieldCommissionToggle: {
		".provision-toggle",
		"button[data-role='provision']",
		".details-toggle",
	},
	FieldCommission: {
		".abschlussprovision",
		".provision-abschluss",
	},
	FieldSpecialBonus: {
		".sonderprovision",
		".provision-sonder",
	},
	FieldTotalCommission: {
		".gesamtprovision",
		".provision-gesamt",
	},

	FieldApplyForm: {
		"form#antragsformular",
		"form.antrag-form",
	},
	FieldApplicationNumber: {
		".antragsnummer",
		"[data-role='antragsnummer']",
	},

	FieldProvider: {
		".anbieter",
		".provider",
	},
	FieldTariffName: {
		".tarifname",
		".tariff-name",
	},
	FieldMonthlyPrice: {
		".preis-monat",
		".price-month",
	},
	FieldAnnualPrice: {
		".preis-jahr",
		".price-year",
	},
	FieldBasePrice: {
		".grundpreis",
		".base-price",
	},
	FieldUsagePrice: {
		".arbeitspreis",
		".usage-price",
	},
	FieldContractTerm: {
		".laufzeit",
	},
	FieldCancellation: {
		".kuendigung",
		".kuendigungsfrist",
	},
	FieldGuarantee: {
		".preisgarantie",
	},
	FieldTariffID: {
		"[data-tariff-id]",
	},
}

// FieldNotFoundError reports that none of a logical field's candidate
// selectors matched the current page.
type FieldNotFoundError struct {
	Field Field
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("no candidate selector for field %q matched the page", e.Field)
}

// Resolver maps logical fields to concrete page elements. It is read-only
// after construction and safe for concurrent use.
type Resolver struct {
	table map[Field][]string
}

// NewResolver builds a resolver over the default selector table and verifies
// every candidate parses as a valid CSS selector. An invalid entry is a
// programming error caught at startup, not at request time.
func NewResolver() (*Resolver, error) {
	for field, candidates := range defaultSelectors {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("selector table: field %q has no candidates", field)
		}
		for _, sel := range candidates {
			if _, err := cascadia.ParseGroup(sel); err != nil {
				return nil, fmt.Errorf("selector table: field %q: invalid selector %q: %w", field, sel, err)
			}
		}
	}
	return &Resolver{table: defaultSelectors}, nil
}

// Candidates returns the priority-ordered selector list for a field.
func (r *Resolver) Candidates(field Field) []string {
	return r.table[field]
}

// Resolve returns the first candidate element that exists on the page,
// together with the selector that matched (callers feed it into condition
// waits). It does not wait: absence of every candidate is reported
// immediately as a FieldNotFoundError.
func (r *Resolver) Resolve(p *rod.Page, field Field) (*rod.Element, string, error) {
	candidates, ok := r.table[field]
	if !ok {
		return nil, "", fmt.Errorf("unknown logical field %q", field)
	}
	for _, sel := range candidates {
		has, el, err := p.Has(sel)
		if err != nil {
			return nil, "", err
		}
		if has {
			return el, sel, nil
		}
	}
	return nil, "", &FieldNotFoundError{Field: field}
}

// ResolveIn is Resolve scoped to an element subtree (one result item).
func (r *Resolver) ResolveIn(el *rod.Element, field Field) (*rod.Element, string, error) {
	candidates, ok := r.table[field]
	if !ok {
		return nil, "", fmt.Errorf("unknown logical field %q", field)
	}
	for _, sel := range candidates {
		has, sub, err := el.Has(sel)
		if err != nil {
			return nil, "", err
		}
		if has {
			return sub, sel, nil
		}
	}
	return nil, "", &FieldNotFoundError{Field: field}
}

// Find is the goquery-side resolver, used by the extractor over static
// HTML. It returns the first non-empty match among the candidates, or nil.
func (r *Resolver) Find(s *goquery.Selection, field Field) *goquery.Selection {
	for _, sel := range r.table[field] {
		if m := s.Find(sel); m.Length() > 0 {
			return m.First()
		}
	}
	return nil
}
