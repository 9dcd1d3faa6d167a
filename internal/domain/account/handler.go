package account

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/pkg/pagination"
)

// Sessions sets and clears the session cookie.
type Sessions interface {
	Start(c echo.Context, token string)
	Clear(c echo.Context)
}

type Handler struct {
	svc      *Service
	sessions Sessions
}

func NewHandler(svc *Service, sessions Sessions) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	a := api.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
	a.GET("/me", h.Me)

	admin := api.Group("/admin")
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id/status", h.UpdateStatus)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, token, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	h.sessions.Start(c, token)
	return httpx.Created(c, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, token, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		var he *httpx.Error
		if errors.As(err, &he) && he.Status == http.StatusTooManyRequests {
			if d, ok := he.Details.(map[string]int); ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(d["retry_after"]))
			}
		}
		return err
	}
	h.sessions.Start(c, token)
	return httpx.OK(c, http.StatusOK, u)
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	return httpx.Message(c, http.StatusOK, "logged out", nil)
}

func (h *Handler) Me(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	me, err := h.svc.Me(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, me)
}

func (h *Handler) ListUsers(c echo.Context) error {
	var f UserFilter
	if raw := c.QueryParam("role"); raw != "" {
		role, ok := auth.ParseRole(raw)
		if !ok {
			return httpx.BadRequest("unknown role")
		}
		f.Role = &role
	}
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return httpx.BadRequest("active must be true or false")
		}
		f.Active = &active
	}
	f.Search = strings.TrimSpace(c.QueryParam("search"))

	p := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pagination.NewPage(users, total, p))
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return httpx.Created(c, u)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.SetStatus(c.Request().Context(), caller, id, *req.IsActive)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, u)
}
