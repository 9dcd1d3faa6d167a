package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.Get)
}

func (h *Handler) Get(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, d)
}
