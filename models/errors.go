package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeCascadeStalled    = "CASCADE_STALLED"
	ErrCodeSelectionMismatch = "SELECTION_MISMATCH"
	ErrCodeNoResultsTimeout  = "NO_RESULTS_TIMEOUT"
	ErrCodeLoginFailed       = "LOGIN_FAILED"
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodeApplication       = "APPLICATION_FAILED"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Field names the form field involved in the failure. Set for
	// CASCADE_STALLED (the field that never populated) and
	// SELECTION_MISMATCH (the field whose requested option was absent).
	Field string `json:"field,omitempty"`

	// Artifact is the path of the diagnostic screenshot captured on a
	// NO_RESULTS_TIMEOUT, for offline inspection.
	Artifact string `json:"artifact,omitempty"`
}

// PortalError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type PortalError struct {
	Code     string
	Message  string
	Field    string // logical form field, when the failure is field-specific
	Artifact string // diagnostic screenshot path, when one was captured
	Err      error  // wrapped original error
}

func (e *PortalError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *PortalError) Unwrap() error {
	return e.Err
}

// NewPortalError creates a new PortalError.
func NewPortalError(code, message string, err error) *PortalError {
	return &PortalError{Code: code, Message: message, Err: err}
}

// NewFieldError creates a PortalError tied to a logical form field.
func NewFieldError(code, message, field string, err error) *PortalError {
	return &PortalError{Code: code, Message: message, Field: field, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *PortalError) ToDetail() *ErrorDetail {
	return &ErrorDetail{
		Code:     e.Code,
		Message:  e.Message,
		Field:    e.Field,
		Artifact: e.Artifact,
	}
}
