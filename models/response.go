package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without a fatal error.
	// Per-item extraction and drill-down failures do not clear it.
	Success bool `json:"success"`

	// Tariffs is the offer list in the order the portal rendered it.
	Tariffs []TariffRecord `json:"tariffs"`

	// Count is len(Tariffs), kept explicit for workflow callers.
	Count int `json:"count"`

	// PreviousProvider, PreviousTariff and PreviousAnnualPrice echo the
	// request's comparison baseline.
	PreviousProvider    string   `json:"previous_provider,omitempty"`
	PreviousTariff      string   `json:"previous_tariff,omitempty"`
	PreviousAnnualPrice *float64 `json:"previous_annual_price,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// CascadeMs is the time spent filling the dependent-field chain.
	CascadeMs int64 `json:"cascade_ms,omitempty"`

	// ResultsMs is the time from submission until the result container
	// settled.
	ResultsMs int64 `json:"results_ms,omitempty"`

	// ExtractMs is the time spent parsing tariffs and running the
	// commission drill-down.
	ExtractMs int64 `json:"extract_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"` // "healthy" or "degraded"
	Uptime          string `json:"uptime"`
	PortalReachable bool   `json:"portal_reachable"`
	PortalTitle     string `json:"portal_title,omitempty"`
	ActiveSessions  int    `json:"active_sessions"`
	Version         string `json:"version"`
}
