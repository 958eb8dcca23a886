package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Delivery start modes for an application.
const (
	DeliveryASAP = "asap"
)

var reBirthDate = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// ApplicationRequest is the payload for POST /api/v1/apply. It submits a
// supply application for a tariff previously returned by a scrape.
type ApplicationRequest struct {
	// TariffID is the portal's identifier for the chosen tariff. Required.
	TariffID string `json:"tariff_id" binding:"required"`

	// PostalCode, AnnualConsumption and HouseholdSize restate the supply
	// parameters the tariff was computed for.
	PostalCode        string `json:"postal_code" binding:"required"`
	AnnualConsumption int    `json:"annual_consumption" binding:"required,min=1"`
	HouseholdSize     int    `json:"household_size,omitempty" binding:"omitempty,min=1"`

	// Customer identity.
	Salutation string `json:"salutation" binding:"required,oneof=Herr Frau"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`

	// Supply address.
	Street      string `json:"street" binding:"required"`
	HouseNumber string `json:"house_number" binding:"required"`
	City        string `json:"city" binding:"required"`

	// BirthDate in "DD.MM.YYYY" format, as the portal expects it.
	BirthDate string `json:"birth_date" binding:"required"`

	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required,email"`

	// Bank data. The portal rejects applications without a direct-debit
	// mandate, so both fields are mandatory.
	IBAN          string `json:"iban" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`

	// DeliveryStart is either "asap" (default) or a "DD.MM.YYYY" date.
	DeliveryStart string `json:"delivery_start,omitempty"`

	// WebhookURL, when set, receives an application.completed or
	// application.failed event once the submission finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// Timeout is the maximum duration in seconds for the entire
	// application flow. Default: 90. Max: 300.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=300"`
}

// Defaults applies default values to unset fields.
func (r *ApplicationRequest) Defaults() {
	if r.HouseholdSize == 0 {
		r.HouseholdSize = 1
	}
	if r.DeliveryStart == "" {
		r.DeliveryStart = DeliveryASAP
	}
	if r.Timeout == 0 {
		r.Timeout = 90
	}
}

// Validate checks invariants the binding tags cannot express.
func (r *ApplicationRequest) Validate() error {
	if !rePostalCode.MatchString(r.PostalCode) {
		return NewFieldError(ErrCodeInvalidInput,
			fmt.Sprintf("postal_code %q is not a valid five-digit postal code", r.PostalCode),
			"postal_code", nil)
	}
	if !reBirthDate.MatchString(r.BirthDate) {
		return NewFieldError(ErrCodeInvalidInput,
			"birth_date must be in DD.MM.YYYY format", "birth_date", nil)
	}
	iban := strings.ReplaceAll(r.IBAN, " ", "")
	if len(iban) < 15 || len(iban) > 34 {
		return NewFieldError(ErrCodeInvalidInput,
			"iban has an implausible length", "iban", nil)
	}
	if r.DeliveryStart != DeliveryASAP && !reBirthDate.MatchString(r.DeliveryStart) {
		return NewFieldError(ErrCodeInvalidInput,
			`delivery_start must be "asap" or a DD.MM.YYYY date`, "delivery_start", nil)
	}
	return nil
}

// ApplicationResponse is the response for POST /api/v1/apply.
type ApplicationResponse struct {
	Success bool `json:"success"`

	// ApplicationNumber is the confirmation number the portal issues for a
	// submitted application.
	ApplicationNumber string `json:"application_number,omitempty"`

	Message string `json:"message"`

	// Customer and Email identify the applicant for workflow callers.
	Customer string `json:"customer,omitempty"`
	Email    string `json:"email,omitempty"`

	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}
