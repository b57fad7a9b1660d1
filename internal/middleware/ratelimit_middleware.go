package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/halit/learnsphere/internal/app/models/dto"
	"github.com/halit/learnsphere/internal/pkg/logger"
	"github.com/halit/learnsphere/internal/pkg/ratelimit"
)

// RateLimitByIP limits requests per client IP using the given limiter.
// Used on registration to damp automated sign-up floods.
func RateLimitByIP(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:ip:" + c.ClientIP()

		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Limiter trouble should not take registration down
			logger.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !res.Allowed {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			errorDetail := dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests").
				WithDetails("Registration rate limit exceeded, try again later")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}
