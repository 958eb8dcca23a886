package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enpartner/tarifscout/models"
	"github.com/enpartner/tarifscout/portal"
)

// Version is the service version, stamped at build time via
// -ldflags="-X ...handler.Version=v1.2.3".
var Version = "dev"

// Health returns a handler for GET /api/v1/health. It probes the portal
// over plain HTTP so monitoring never consumes a browser session.
func Health(pt *portal.Portal) gin.HandlerFunc {
	return func(c *gin.Context) {
		reachable, title := pt.CheckReachable(c.Request.Context())

		status := "healthy"
		code := http.StatusOK
		if !reachable {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, models.HealthResponse{
			Status:          status,
			Uptime:          pt.Uptime().Round(time.Second).String(),
			PortalReachable: reachable,
			PortalTitle:     title,
			ActiveSessions:  pt.ActiveSessions(),
			Version:         Version,
		})
	}
}
