package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enpartner/tarifscout/cache"
	"github.com/enpartner/tarifscout/models"
	"github.com/enpartner/tarifscout/portal"
	"github.com/enpartner/tarifscout/webhook"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup (when the request opts in via max_age).
//  3. Portal.DoScrape → offer list.
//  4. Cache store, return 200.
//
// Everything between the bound request and the response payload is the
// portal engine's business; the handler only translates errors into
// transport status codes.
func Scrape(pt *portal.Portal, cc *cache.Cache, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		// ── 2. Cache lookup ─────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			cacheKey := cache.Key(&req)
			// Get hands back a private copy, so stamping status and
			// timing here cannot race other hits on the same key.
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		// ── 3. Scrape ───────────────────────────────────────────────
		resp, err := pt.DoScrape(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		// ── 4. Cache store ──────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			cc.Set(cache.Key(&req), resp)
			resp.CacheStatus = "miss"
		}

		if req.WebhookURL != "" {
			webhook.DeliverAsync(req.WebhookURL, webhookSecret, &webhook.Event{
				Type:      webhook.EventScrapeCompleted,
				Timestamp: time.Now().Unix(),
				Data:      resp,
			})
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a PortalError to the correct HTTP status code and writes
// a structured JSON error response. The tariffs slice is always present so
// workflow callers can iterate it without nil checks.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	portalErr, ok := err.(*models.PortalError)
	if !ok {
		portalErr = models.NewPortalError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(portalErr), models.ScrapeResponse{
		Success: false,
		Tariffs: []models.TariffRecord{},
		Error:   portalErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.PortalError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeSelectionMismatch:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeCascadeStalled, models.ErrCodeLoginFailed, models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeNoResultsTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
