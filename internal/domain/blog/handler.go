package blog

import (
	"net/http"

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
	pub := api.Group("/public/blogs")
	pub.GET("", h.ListPublished)
	pub.GET("/:slug", h.GetPublished)

	g := api.Group("/blogs")
	g.GET("", h.ListOwn)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
}

func filterFromQuery(c echo.Context) Filter {
	f := Filter{Tag: c.QueryParam("tag"), Search: c.QueryParam("search")}
	if raw := c.QueryParam("status"); raw != "" {
		st := Status(raw)
		f.Status = &st
	}
	return f
}

func (h *Handler) ListPublished(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListPublished(c.Request().Context(), filterFromQuery(c), p)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
}

func (h *Handler) GetPublished(c echo.Context) error {
	post, err := h.svc.GetPublished(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, post)
}

func (h *Handler) ListOwn(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListOwn(c.Request().Context(), caller, filterFromQuery(c), p)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
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
	post, err := h.svc.Create(c.Request().Context(), caller, req)
	if err != nil {
		return err
	}
	return httpx.Created(c, post)
}

func (h *Handler) Update(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	post, err := h.svc.Update(c.Request().Context(), caller, id, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, post)
}
