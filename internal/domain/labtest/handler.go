package labtest

import (
	"net/http"

	"github.com/google/uuid"
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
	g := api.Group("/lab-tests")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id/status", h.UpdateStatus)
}

func (h *Handler) List(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	var f Filter
	if raw := c.QueryParam("status"); raw != "" {
		st := Status(raw)
		f.Status = &st
	}
	if raw := c.QueryParam("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return httpx.BadRequest("invalid patient_id")
		}
		f.PatientID = &id
	}

	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), caller, f, p)
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
	t, err := h.svc.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, t)
}

func (h *Handler) Create(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	var req CreateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.svc.Order(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return httpx.Created(c, t)
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
	var req StatusRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.svc.UpdateStatus(c.Request().Context(), caller, id, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, t)
}
