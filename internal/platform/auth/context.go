package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/httpx"
)

type contextKey string

const callerKey contextKey = "caller"

// Caller is the identity resolved for one request. It is never persisted.
type Caller struct {
	UserID uuid.UUID
	Role   Role
	Email  string
}

// Is reports whether the caller holds one of roles.
func (c *Caller) Is(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey).(*Caller)
	return c, ok && c != nil
}

// RequireCaller returns the resolved caller or a 401 error. Handlers behind
// Gate always have one; the check guards routes mounted elsewhere.
func RequireCaller(c echo.Context) (*Caller, error) {
	caller, ok := CallerFromContext(c.Request().Context())
	if !ok {
		return nil, httpx.Unauthenticated()
	}
	return caller, nil
}
