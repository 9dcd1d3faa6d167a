package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/metrics"
)

// CookieName is the cookie that carries the credential.
const CookieName = "auth-token"

// ErrUnauthenticated is the only failure the resolver reports; callers never
// learn whether the cookie was missing, tampered with or expired.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier is satisfied by *TokenCodec.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Secure bool
	Domain string
	TTL    time.Duration
}

// SessionResolver maps the auth-token cookie to a Caller.
type SessionResolver struct {
	verifier Verifier
	cookie   CookieConfig
}

func NewSessionResolver(v Verifier, cfg CookieConfig) *SessionResolver {
	return &SessionResolver{verifier: v, cookie: cfg}
}

// Resolve returns the caller for the request. A present but invalid cookie is
// cleared on the response; an absent cookie leaves the response untouched.
func (r *SessionResolver) Resolve(c echo.Context) (*Caller, error) {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil, ErrUnauthenticated
	}

	id, err := r.verifier.Verify(ck.Value)
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
		r.Clear(c)
		return nil, ErrUnauthenticated
	}

	return &Caller{UserID: id.SubjectID, Role: id.Role, Email: id.Email}, nil
}

// Start sets the session cookie for a freshly issued token.
func (r *SessionResolver) Start(c echo.Context, token string) {
	c.SetCookie(r.newCookie(token, int(r.cookie.TTL.Seconds())))
}

// Clear expires the session cookie.
func (r *SessionResolver) Clear(c echo.Context) {
	c.SetCookie(r.newCookie("", -1))
}

func (r *SessionResolver) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Domain:   r.cookie.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Session resolves the caller, if any, and stores it on the request context.
// It never rejects; Gate decides whether a missing caller is acceptable.
func Session(r *SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := r.Resolve(c)
			if err == nil {
				c.SetRequest(c.Request().WithContext(WithCaller(c.Request().Context(), caller)))
				c.Set("caller_role", string(caller.Role))
				c.Set("caller_id", caller.UserID.String())
			}
			return next(c)
		}
	}
}
