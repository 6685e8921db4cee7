package ratelimit

import (
	"github.com/gin-gonic/gin"

	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/response"
)

// KeyFunc picks the bucket for a request.
type KeyFunc func(c *gin.Context) string

// ByUserOrIP keys by the authenticated user id, falling back to client IP.
func ByUserOrIP(c *gin.Context) string {
	if id := middleware.GetUserID(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}

// Middleware rejects requests over the limit with 429.
func Middleware(l *Limiter, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = ByUserOrIP
	}
	return func(c *gin.Context) {
		k := key(c)
		if !l.Allow(k) {
			logger := log.Ctx(c.Request.Context())
			logger.Warn().Str("bucket", k).Msg("rate limit exceeded")
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "too many requests")
			return
		}
		c.Next()
	}
}
