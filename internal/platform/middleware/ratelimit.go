package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/metrics"
	"github.com/carepoint/portal/internal/platform/throttle"
)

// RateLimit throttles requests per client IP. Limiter errors are logged and
// the request is let through.
func RateLimit(limiter throttle.Limiter, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				logger.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("rate limiter unavailable")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				metrics.RateLimitedTotal.WithLabelValues("ip").Inc()
				return httpx.TooManyRequests("rate limit exceeded")
			}
			return next(c)
		}
	}
}
