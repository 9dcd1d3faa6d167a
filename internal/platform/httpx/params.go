package httpx

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ParamUUID parses a path parameter as a UUID.
func ParamUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, BadRequest("invalid " + name)
	}
	return id, nil
}

// QueryUUID parses an optional query parameter as a UUID. A missing
// parameter yields nil without error.
func QueryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, BadRequest("invalid " + name)
	}
	return &id, nil
}

// QueryTime parses an optional query parameter as RFC 3339 or as a plain
// YYYY-MM-DD date (midnight UTC).
func QueryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, BadRequest("invalid " + name + ", expected RFC 3339 or YYYY-MM-DD")
}
