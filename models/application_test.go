package models

import (
	"errors"
	"testing"
)

func validApplication() ApplicationRequest {
	r := ApplicationRequest{
		TariffID:          "T-100",
		PostalCode:        "10115",
		AnnualConsumption: 3500,
		Salutation:        "Herr",
		FirstName:         "Max",
		LastName:          "Mustermann",
		Street:            "Invalidenstraße",
		HouseNumber:       "44",
		City:              "Berlin",
		BirthDate:         "01.02.1980",
		Phone:             "+49 30 1234567",
		Email:             "max@example.com",
		IBAN:              "DE89 3704 0044 0532 0130 00",
		AccountHolder:     "Max Mustermann",
	}
	r.Defaults()
	return r
}

func TestApplicationRequestDefaults(t *testing.T) {
	r := ApplicationRequest{}
	r.Defaults()

	if r.HouseholdSize != 1 {
		t.Errorf("HouseholdSize = %d, want 1", r.HouseholdSize)
	}
	if r.DeliveryStart != DeliveryASAP {
		t.Errorf("DeliveryStart = %q, want %q", r.DeliveryStart, DeliveryASAP)
	}
	if r.Timeout != 90 {
		t.Errorf("Timeout = %d, want 90", r.Timeout)
	}
}

func TestApplicationRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ApplicationRequest)
		wantField string
	}{
		{"valid", func(r *ApplicationRequest) {}, ""},
		{"valid with delivery date", func(r *ApplicationRequest) { r.DeliveryStart = "01.10.2026" }, ""},
		{"bad postal code", func(r *ApplicationRequest) { r.PostalCode = "ABCDE" }, "postal_code"},
		{"bad birth date format", func(r *ApplicationRequest) { r.BirthDate = "1980-02-01" }, "birth_date"},
		{"iban too short", func(r *ApplicationRequest) { r.IBAN = "DE89" }, "iban"},
		{"iban too long", func(r *ApplicationRequest) { r.IBAN = "DE890000000000000000000000000000000000000" }, "iban"},
		{"bad delivery start", func(r *ApplicationRequest) { r.DeliveryStart = "next week" }, "delivery_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validApplication()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var pe *PortalError
			if !errors.As(err, &pe) {
				t.Fatalf("error type %T, want *PortalError", err)
			}
			if pe.Field != tt.wantField {
				t.Errorf("field = %q, want %q", pe.Field, tt.wantField)
			}
		})
	}
}

// Spaces inside the IBAN are cosmetic and must not affect the length check.
func TestApplicationRequestIBANSpaces(t *testing.T) {
	r := validApplication()
	r.IBAN = "DE89370400440532013000"
	if err := r.Validate(); err != nil {
		t.Errorf("compact IBAN rejected: %v", err)
	}
}
