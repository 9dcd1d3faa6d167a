// Package httpx holds the JSON envelope every endpoint answers with, the
// typed errors handlers return, and the request validator.
package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the response body shape shared by all routes.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK writes a successful envelope with the given status.
func OK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Created is OK with 201.
func Created(c echo.Context, data interface{}) error {
	return OK(c, http.StatusCreated, data)
}

// Message writes a successful envelope carrying a human-readable message.
func Message(c echo.Context, status int, msg string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: msg})
}

// Fail writes an error envelope. Most handlers should return an *Error
// instead and let ErrorHandler render it.
func Fail(c echo.Context, status int, msg string, details interface{}) error {
	return c.JSON(status, Envelope{Success: false, Error: msg, Details: details})
}
