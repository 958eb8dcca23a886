package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/enpartner/tarifscout/config"
	"github.com/enpartner/tarifscout/models"
)

// bucket is one caller's token bucket plus the bookkeeping to expire it.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns token-bucket rate limiting middleware backed by
// golang.org/x/time/rate. The bucket identity is the caller's API key —
// one bucket per workflow, set by the auth middleware — or the client IP
// when auth is disabled.
//
// Every accepted request costs a full browser session against the portal,
// which is why the configured defaults are deliberately low: a workflow
// that retries aggressively would otherwise drain the session semaphore
// for everyone.
//
// Buckets unused for 1 hour are evicted by a background sweep every
// 5 minutes, keeping the map bounded.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	bucketFor := func(identity string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[identity]
		if !ok {
			b = &bucket{
				limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
			}
			buckets[identity] = b
		}
		b.lastSeen = time.Now()
		return b.limiter
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			mu.Lock()
			for id, b := range buckets {
				if b.lastSeen.Before(cutoff) {
					delete(buckets, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		identity, authenticated := c.Get("api_key")
		if !authenticated {
			identity = c.ClientIP()
		}

		if !bucketFor(identity.(string)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ScrapeResponse{
				Success: false,
				Tariffs: []models.TariffRecord{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}
