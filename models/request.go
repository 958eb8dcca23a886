package models

import (
	"fmt"
	"regexp"
)

// Contract types accepted by the portal's calculator form.
const (
	ContractNewCustomer = "new-customer"
	ContractSwitch      = "switch"
)

// rePostalCode matches a German postal code (five digits).
var rePostalCode = regexp.MustCompile(`^\d{5}$`)

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// PostalCode is the supply address postal code. Required, five digits.
	PostalCode string `json:"postal_code" binding:"required"`

	// AnnualConsumption is the yearly consumption in kWh. Required.
	AnnualConsumption int `json:"annual_consumption" binding:"required,min=1"`

	// HouseholdSize is the number of persons in the household.
	// Default: 1.
	HouseholdSize int `json:"household_size,omitempty" binding:"omitempty,min=1"`

	// ContractType selects the portal's customer mode.
	// Allowed: "new-customer" (default), "switch".
	ContractType string `json:"contract_type,omitempty" binding:"omitempty,oneof=new-customer switch"`

	// City is an optional explicit city. When empty, the first city the
	// portal offers for the postal code is selected.
	City string `json:"city,omitempty"`

	// Street is an optional explicit street. When empty, the first street
	// offered for the city is selected.
	Street string `json:"street,omitempty"`

	// HouseNumber is the house number. Default: "1".
	HouseNumber string `json:"house_number,omitempty"`

	// IncludeCommission enables the per-tariff commission drill-down.
	// Commission figures are only visible to authenticated brokers, so
	// enabling this adds one disclosure interaction per tariff.
	// Default: false.
	IncludeCommission bool `json:"include_commission,omitempty"`

	// PreviousProvider, PreviousTariff and PreviousAnnualPrice describe the
	// customer's current contract. They are echoed back on the response so
	// workflow callers can compute savings against the offer list.
	PreviousProvider    string   `json:"previous_provider,omitempty"`
	PreviousTariff      string   `json:"previous_tariff,omitempty"`
	PreviousAnnualPrice *float64 `json:"previous_annual_price,omitempty"`

	// WebhookURL, when set, receives a scrape.completed event with the
	// full response once the scrape finishes successfully.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// Timeout is the maximum duration in seconds for the entire scrape
	// operation. Default: 60. Max: 180.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`

	// MaxAge enables the response cache: a cached result younger than
	// MaxAge milliseconds is returned without opening a browser session.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.HouseholdSize == 0 {
		r.HouseholdSize = 1
	}
	if r.ContractType == "" {
		r.ContractType = ContractNewCustomer
	}
	if r.HouseNumber == "" {
		r.HouseNumber = "1"
	}
	if r.Timeout == 0 {
		r.Timeout = 60
	}
}

// Validate checks invariants the binding tags cannot express. It is also
// the validation entry point for non-HTTP callers of the portal package.
func (r *ScrapeRequest) Validate() error {
	if !rePostalCode.MatchString(r.PostalCode) {
		return NewFieldError(ErrCodeInvalidInput,
			fmt.Sprintf("postal_code %q is not a valid five-digit postal code", r.PostalCode),
			"postal_code", nil)
	}
	if r.AnnualConsumption <= 0 {
		return NewFieldError(ErrCodeInvalidInput,
			"annual_consumption must be positive", "annual_consumption", nil)
	}
	if r.HouseholdSize < 1 {
		return NewFieldError(ErrCodeInvalidInput,
			"household_size must be at least 1", "household_size", nil)
	}
	return nil
}
