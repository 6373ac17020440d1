package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/taskora/internal/config"
	"go.uber.org/zap"
)

// Middleware throttles by client IP using the marketplace-configured rate.
// Limiter outages fail open: a broken Redis must not take the API down.
func Middleware(limiter Limiter, marketplace *config.MarketplaceConfigHolder, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("ratelimit")
	return func(c *gin.Context) {
		cfg := marketplace.Current()
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), cfg.RateLimitPerSecond, cfg.RateLimitBurst)
		if err != nil {
			log.Warn("limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}
