package handlers

import (
	"log"
	"net/http"

	"pollboard-backend/cache"
	"pollboard-backend/config"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware throttles requests per client IP. The limit is
// evaluated in Redis when available so it holds across instances, with
// an in-process token bucket as fallback.
func RateLimitMiddleware() gin.HandlerFunc {
	perSecond := config.C.RateLimitPerSecond()
	burst := config.C.RateLimitBurst()

	limiter := cache.NewFallbackRateLimiter(
		cache.NewRedisRateLimiter("api", perSecond, burst),
		cache.NewLocalRateLimiter(perSecond, burst),
	)

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Fail open rather than reject traffic on limiter errors.
			log.Printf("rate limiter error: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
