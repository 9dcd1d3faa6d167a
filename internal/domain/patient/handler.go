package patient

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients")
	g.GET("", h.List)
	g.GET("/me", h.GetMe)
	g.PUT("/me", h.UpdateMe)
	g.GET("/:id", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), caller, strings.TrimSpace(c.QueryParam("search")), p)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
}

func (h *Handler) Get(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	prof, err := h.svc.Profile(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, prof)
}

func (h *Handler) GetMe(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	prof, err := h.svc.Me(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, prof)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	pt, err := h.svc.UpdateMe(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pt)
}
