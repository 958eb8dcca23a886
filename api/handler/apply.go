package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enpartner/tarifscout/models"
	"github.com/enpartner/tarifscout/portal"
	"github.com/enpartner/tarifscout/webhook"
)

// Apply returns a handler for POST /api/v1/apply.
//
// The application flow is never cached: every call is a real submission.
// When the request names a webhook URL, the outcome is also delivered
// asynchronously so n8n flows can fire and forget.
func Apply(pt *portal.Portal, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ApplicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ApplicationResponse{
				Success: false,
				Message: "invalid request",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		resp, err := pt.DoApply(c.Request.Context(), &req)
		if err != nil {
			portalErr, ok := err.(*models.PortalError)
			if !ok {
				portalErr = models.NewPortalError(models.ErrCodeInternal, err.Error(), err)
			}
			failure := models.ApplicationResponse{
				Success: false,
				Message: "application not submitted",
				Error:   portalErr.ToDetail(),
				Timing: models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				},
			}
			if req.WebhookURL != "" {
				webhook.DeliverAsync(req.WebhookURL, webhookSecret, &webhook.Event{
					Type:      webhook.EventApplicationFailed,
					TariffID:  req.TariffID,
					Timestamp: time.Now().Unix(),
					Data:      failure,
				})
			}
			c.JSON(mapApplyErrorToStatus(portalErr), failure)
			return
		}

		if req.WebhookURL != "" {
			webhook.DeliverAsync(req.WebhookURL, webhookSecret, &webhook.Event{
				Type:      webhook.EventApplicationCompleted,
				TariffID:  req.TariffID,
				Timestamp: time.Now().Unix(),
				Data:      resp,
			})
		}

		c.JSON(http.StatusOK, resp)
	}
}

// mapApplyErrorToStatus translates application error codes to HTTP status
// codes. An APPLICATION_FAILED is a portal-side rejection, not a caller
// mistake, so it maps to 502.
func mapApplyErrorToStatus(e *models.PortalError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeApplication, models.ErrCodeLoginFailed, models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
