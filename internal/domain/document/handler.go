package document

import (
	"errors"
	"mime"
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
	g := api.Group("/documents")
	g.GET("", h.List)
	g.POST("", h.Upload)
	g.GET("/:id", h.Get)
	g.GET("/:id/download", h.Download)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Upload(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return httpx.PayloadTooLarge()
		}
		return httpx.BadRequest("multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := h.svc.Upload(c.Request().Context(), caller, Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
		Body:        f,
	})
	if err != nil {
		return err
	}
	return httpx.Created(c, doc)
}

func (h *Handler) List(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	var f Filter
	if raw := c.QueryParam("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return httpx.BadRequest("invalid patient_id")
		}
		f.PatientID = &id
	}
	if category := c.QueryParam("category"); category != "" {
		f.Category = &category
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
	doc, err := h.svc.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, doc)
}

func (h *Handler) Download(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	doc, body, err := h.svc.Open(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	return c.Stream(http.StatusOK, doc.ContentType, body)
}

func (h *Handler) Delete(c echo.Context) error {
	caller, err := auth.RequireCaller(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "document deleted", nil)
}
