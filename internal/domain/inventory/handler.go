package inventory

import (
	"net/http"
	"strconv"

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
	g := api.Group("/inventory")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/adjust", h.Adjust)
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{Search: c.QueryParam("search")}
	if category := c.QueryParam("category"); category != "" {
		f.Category = &category
	}
	if raw := c.QueryParam("low_stock"); raw != "" {
		low, err := strconv.ParseBool(raw)
		if err != nil {
			return httpx.BadRequest("low_stock must be true or false")
		}
		f.LowStock = low
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
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, item)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return httpx.Created(c, item)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, item)
}

func (h *Handler) Adjust(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req AdjustRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.svc.Adjust(c.Request().Context(), caller, id, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, item)
}
