package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/enpartner/tarifscout/cache"
	"github.com/enpartner/tarifscout/models"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeSelectionMismatch, http.StatusUnprocessableEntity},
		{models.ErrCodeCascadeStalled, http.StatusBadGateway},
		{models.ErrCodeLoginFailed, http.StatusBadGateway},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeNoResultsTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeConfiguration, http.StatusInternalServerError},
		{models.ErrCodeBrowserCrash, http.StatusInternalServerError},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			e := models.NewPortalError(tt.code, "x", nil)
			if got := mapErrorToStatus(e); got != tt.want {
				t.Errorf("mapErrorToStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

// Concurrent hits on the same cache key must each get their own response
// value: the hit path stamps cache status and timing, and with a shared
// pointer those writes would race the JSON render of other requests.
// Run with -race to catch regressions.
func TestScrapeCacheHitConcurrent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cc := cache.New(10)
	seed := &models.ScrapeRequest{PostalCode: "10115", AnnualConsumption: 3500}
	seed.Defaults()
	cc.Set(cache.Key(seed), &models.ScrapeResponse{
		Success: true,
		Tariffs: []models.TariffRecord{
			{Provider: "Stadtwerke Musterstadt", Tariff: "Basis Strom", MonthlyPrice: 89.90, AnnualPrice: 1078.80},
		},
		Count: 1,
	})

	// The portal engine is never reached on a hit, so none is wired.
	r := gin.New()
	r.POST("/scrape", Scrape(nil, cc, ""))

	const body = `{"postal_code":"10115","annual_consumption":3500,"max_age":60000}`
	const clients = 8

	var wg sync.WaitGroup
	recorders := make([]*httptest.ResponseRecorder, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			recorders[i] = w
		}(i)
	}
	wg.Wait()

	for i, w := range recorders {
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, body %s", i, w.Code, w.Body.String())
		}
		var resp models.ScrapeResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("request %d: decode: %v", i, err)
		}
		if resp.CacheStatus != "hit" {
			t.Errorf("request %d: cache_status = %q, want hit", i, resp.CacheStatus)
		}
		if resp.Count != 1 || len(resp.Tariffs) != 1 {
			t.Errorf("request %d: count=%d tariffs=%d", i, resp.Count, len(resp.Tariffs))
		}
	}
}

func TestMapApplyErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeApplication, http.StatusBadGateway},
		{models.ErrCodeLoginFailed, http.StatusBadGateway},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			e := models.NewPortalError(tt.code, "x", nil)
			if got := mapApplyErrorToStatus(e); got != tt.want {
				t.Errorf("mapApplyErrorToStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
