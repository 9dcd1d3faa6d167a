package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityConfig tunes SecurityHeaders for the deployment.
type SecurityConfig struct {
	// HSTS is only sent when the portal is served over TLS, which is when
	// the session cookie is marked Secure.
	HSTS bool
	// PublicPrefix marks anonymous read-only content that caches may keep.
	PublicPrefix string
	PublicMaxAge string
}

// SecurityHeaders sets the response headers of the portal API. Session
// cookies are SameSite=Lax, so cross-site embedding and opener access are
// refused as well.
func SecurityHeaders(cfg SecurityConfig) echo.MiddlewareFunc {
	if cfg.PublicMaxAge == "" {
		cfg.PublicMaxAge = "300"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-site")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			path := c.Request().URL.Path
			if cfg.PublicPrefix != "" && strings.HasPrefix(path, cfg.PublicPrefix) {
				h.Set("Cache-Control", "public, max-age="+cfg.PublicMaxAge)
			} else {
				// Anything else may be a patient record or carry the session cookie.
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
			}
			return next(c)
		}
	}
}
