package models

// TariffRecord is one normalized offer from the portal's result list.
//
// Price fields that the portal may omit are pointers: nil means the value
// was absent from the rendered item, which is distinct from a real 0.00.
type TariffRecord struct {
	// Provider is the supplying company's display name.
	Provider string `json:"provider"`

	// Tariff is the tariff's display name.
	Tariff string `json:"tariff"`

	// MonthlyPrice is the monthly installment in EUR.
	MonthlyPrice float64 `json:"monthly_price"`

	// AnnualPrice is the projected first-year total in EUR.
	AnnualPrice float64 `json:"annual_price"`

	// BasePrice is the yearly base price component in EUR, if rendered.
	BasePrice *float64 `json:"base_price,omitempty"`

	// UsagePrice is the per-kWh price in cents, if rendered.
	UsagePrice *float64 `json:"usage_price,omitempty"`

	// ContractTerm is the minimum contract term as displayed (free text).
	ContractTerm string `json:"contract_term,omitempty"`

	// CancellationNotice is the notice period as displayed (free text).
	CancellationNotice string `json:"cancellation_notice,omitempty"`

	// PriceGuarantee is the price-guarantee period as displayed (free text).
	PriceGuarantee string `json:"price_guarantee,omitempty"`

	// Commission is the broker's closing commission in EUR. Populated only
	// by the commission drill-down; nil when the drill-down was skipped or
	// failed for this tariff.
	Commission *float64 `json:"commission,omitempty"`

	// SpecialCommission is a campaign bonus on top of the closing
	// commission, when the portal advertises one.
	SpecialCommission *float64 `json:"special_commission,omitempty"`

	// TotalCommission is the portal's own closing+special total, when shown.
	TotalCommission *float64 `json:"total_commission,omitempty"`

	// TariffID is the portal's identifier for the tariff, when the result
	// item carries one. Feed it into an ApplicationRequest to apply.
	TariffID string `json:"tariff_id,omitempty"`

	// Index is the tariff's zero-based position in the rendered result
	// list. It survives item skips, so it also addresses the live DOM item
	// during the drill-down.
	Index int `json:"index"`
}
