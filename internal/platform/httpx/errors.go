package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/platform/db"
)

// Error is a failure that maps onto one HTTP status. Message is shown to the
// client verbatim, so it must never carry driver or internal text.
type Error struct {
	Status  int
	Message string
	Details interface{}
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %s", e.Status, e.Message) }

func newError(status int, msg string) *Error { return &Error{Status: status, Message: msg} }

func BadRequest(msg string) *Error      { return newError(http.StatusBadRequest, msg) }
func Forbidden(msg string) *Error       { return newError(http.StatusForbidden, msg) }
func NotFound(msg string) *Error        { return newError(http.StatusNotFound, msg) }
func Conflict(msg string) *Error        { return newError(http.StatusConflict, msg) }
func TooManyRequests(msg string) *Error { return newError(http.StatusTooManyRequests, msg) }

// PayloadTooLarge is returned when a body exceeds the configured limit.
func PayloadTooLarge() *Error {
	return newError(http.StatusRequestEntityTooLarge, "request body too large")
}

// Unauthenticated is the single message used for every credential failure.
func Unauthenticated() *Error {
	return newError(http.StatusUnauthorized, "authentication required")
}

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ErrorHandler renders every error returned by a handler or middleware as an
// envelope. Unknown errors become a generic 500 and are logged with the
// request id; their text is never sent to the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolve(err)
		if status == http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().
				Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolve(err error) (int, Envelope) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, Envelope{Error: "validation failed", Details: ve.Fields}
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status, Envelope{Error: ae.Message, Details: ae.Details}
	}

	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, Envelope{Error: "resource not found"}
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict, Envelope{Error: "resource already exists"}
	}

	// Echo's own errors (router 404/405, bind failures, body limit).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return http.StatusInternalServerError, Envelope{Error: "internal server error"}
		}
		return he.Code, Envelope{Error: fmt.Sprintf("%v", he.Message)}
	}

	return http.StatusInternalServerError, Envelope{Error: "internal server error"}
}
