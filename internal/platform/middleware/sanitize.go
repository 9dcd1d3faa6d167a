package middleware

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/httpx"
)

const maxHeaderValueSize = 8192

var (
	// Logged only; every query value is bound as a parameter anyway.
	sqlPatterns = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1|1\s*=\s*1)`)

	scriptPatterns = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)
)

// Sanitize rejects requests with path traversal, null bytes, header
// injection, oversized headers or script payloads in the query string.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			rawPath := req.URL.RawPath
			if rawPath == "" {
				rawPath = path
			}

			if containsPathTraversal(path) || containsPathTraversal(rawPath) {
				return httpx.BadRequest("invalid path")
			}
			if containsNullByte(path) || containsNullByte(rawPath) {
				return httpx.BadRequest("invalid path")
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize {
						return httpx.BadRequest("header too large: " + name)
					}
					if strings.ContainsAny(v, "\r\n") {
						return httpx.BadRequest("invalid header: " + name)
					}
				}
			}

			for key, values := range req.URL.Query() {
				if containsNullByte(key) || scriptPatterns.MatchString(key) {
					return httpx.BadRequest("invalid query parameter")
				}
				for _, v := range values {
					if containsNullByte(v) || scriptPatterns.MatchString(v) {
						return httpx.BadRequest("invalid query parameter")
					}
					if sqlPatterns.MatchString(v) {
						logger.Warn().
							Str("param", key).
							Str("path", path).
							Str("remote_ip", c.RealIP()).
							Msg("suspicious query parameter")
					}
				}
			}

			return next(c)
		}
	}
}

func containsPathTraversal(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "..") || strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func containsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}

// SanitizeString strips null bytes and control characters other than
// newline, carriage return and tab, then trims surrounding whitespace.
// Services apply it to free-text fields before storing them.
func SanitizeString(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '\x00' || (unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t') {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
