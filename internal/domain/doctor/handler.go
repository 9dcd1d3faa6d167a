package doctor

import (
	"net/http"
	"strconv"
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
	g := api.Group("/doctors")
	g.GET("", h.List)
	g.GET("/me", h.GetMe)
	g.PUT("/me", h.UpdateMe)
	g.GET("/me/patients", h.MyPatients)
	g.GET("/:id", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{
		Specialization: strings.TrimSpace(c.QueryParam("specialization")),
		Search:         strings.TrimSpace(c.QueryParam("search")),
	}
	if raw := c.QueryParam("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return httpx.BadRequest("available must be true or false")
		}
		f.Available = &v
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, d)
}

func (h *Handler) GetMe(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Me(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, d)
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
	d, err := h.svc.UpdateMe(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, d)
}

func (h *Handler) MyPatients(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.MyPatients(c.Request().Context(), caller, p)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
}
