package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestPortalErrorUnwrap(t *testing.T) {
	cause := errors.New("element not found")
	pe := NewPortalError(ErrCodeCascadeStalled, "city options never loaded", cause)

	if !errors.Is(pe, cause) {
		t.Error("errors.Is lost the cause")
	}
	if got := pe.Error(); got == "" {
		t.Error("Error() returned empty string")
	}
}

func TestPortalErrorNoCause(t *testing.T) {
	pe := NewPortalError(ErrCodeConfiguration, "credentials missing", nil)
	if pe.Unwrap() != nil {
		t.Error("Unwrap of cause-less error should be nil")
	}
	want := fmt.Sprintf("%s: credentials missing", ErrCodeConfiguration)
	if pe.Error() != want {
		t.Errorf("Error() = %q, want %q", pe.Error(), want)
	}
}

func TestToDetail(t *testing.T) {
	pe := NewFieldError(ErrCodeSelectionMismatch, "city not offered", "city", nil)
	pe.Artifact = "/screenshots/no-results-x.png"

	d := pe.ToDetail()
	if d.Code != ErrCodeSelectionMismatch || d.Field != "city" || d.Artifact != pe.Artifact {
		t.Errorf("ToDetail = %+v", d)
	}
	if d.Message != "city not offered" {
		t.Errorf("Message = %q", d.Message)
	}
}
