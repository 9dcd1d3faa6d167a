package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/auth"
)

// patientDataPrefixes are the resources that hold patient records.
var patientDataPrefixes = []string{
	"/api/patients",
	"/api/appointments",
	"/api/prescriptions",
	"/api/lab-tests",
	"/api/documents",
}

// Audit logs one "patient_data_access" line for every request touching
// patient records: who, with which role, what action, which record, and the
// outcome status. It runs after Session so the caller is known.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			resource, recordID, ok := classifyPath(req.URL.Path)
			if !ok {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				// The error is rendered further out; report the status it will get.
				status = errorStatus(err)
			}

			evt := logger.Info().
				Str("type", "patient_data_access").
				Str("resource", resource).
				Str("record_id", recordID).
				Str("action", methodToAction(req.Method)).
				Int("status", status)
			if rid, ok := c.Get("request_id").(string); ok {
				evt = evt.Str("request_id", rid)
			}
			if caller, ok := auth.CallerFromContext(req.Context()); ok {
				evt = evt.Str("user_id", caller.UserID.String()).Str("role", string(caller.Role))
			}
			evt.Msg("access")

			return err
		}
	}
}

func classifyPath(path string) (resource, recordID string, ok bool) {
	for _, p := range patientDataPrefixes {
		if path != p && !strings.HasPrefix(path, p+"/") {
			continue
		}
		resource = strings.TrimPrefix(p, "/api/")
		rest := strings.Split(strings.TrimPrefix(path, p+"/"), "/")
		if len(rest) > 0 {
			if _, err := uuid.Parse(rest[0]); err == nil {
				recordID = rest[0]
			}
		}
		return resource, recordID, true
	}
	return "", "", false
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
