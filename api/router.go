package api

import (
	"github.com/gin-gonic/gin"

	"github.com/enpartner/tarifscout/api/handler"
	"github.com/enpartner/tarifscout/api/middleware"
	"github.com/enpartner/tarifscout/cache"
	"github.com/enpartner/tarifscout/config"
	"github.com/enpartner/tarifscout/portal"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(pt *portal.Portal, cc *cache.Cache, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(pt))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Tariff comparison
	protected.POST("/scrape", handler.Scrape(pt, cc, cfg.Webhook.Secret))

	// Application submission
	protected.POST("/apply", handler.Apply(pt, cfg.Webhook.Secret))

	return r
}
