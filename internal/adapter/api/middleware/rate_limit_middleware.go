package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/infrastructure/ratelimit"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit spends one token of action's budget per request. Callers are keyed
// by user id when authenticated and by client IP otherwise.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil || m.limiter == nil {
				return next(c)
			}
			identity := UserID(c)
			if identity == "" {
				identity = "ip:" + c.RealIP()
			}

			allowed, wait := m.limiter.Allow(identity, action)
			if !allowed {
				logger.Warn("RATE LIMIT: %s exceeded %s budget", identity, action)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}
			return next(c)
		}
	}
}
