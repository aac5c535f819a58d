package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qatumarket/marketplace-api/config"
)

const (
	rateLimitPeriod = 1 * time.Minute
	rateLimitCount  = 20
)

// RateLimiter throttles write-heavy endpoints (checkout, bulk import)
// per client IP. When Redis is unavailable requests pass through.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RedisClient == nil {
			c.Next()
			return
		}

		key := "rate_limit:" + c.ClientIP()

		count, err := config.RedisClient.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			config.RedisClient.Expire(c.Request.Context(), key, rateLimitPeriod)
		}

		if count > rateLimitCount {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
