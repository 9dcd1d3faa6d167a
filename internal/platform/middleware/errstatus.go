package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
)

// errorStatus predicts the status httpx.ErrorHandler will assign to err.
func errorStatus(err error) int {
	var he *httpx.Error
	var ve *httpx.ValidationError
	var ee *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &he):
		return he.Status
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &ee) && ee.Code < http.StatusInternalServerError:
		return ee.Code
	}
	return http.StatusInternalServerError
}
