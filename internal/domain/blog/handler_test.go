package blog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/httpx"
)

func TestHandler_CreateAndReadPublic(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	e.Validator = httpx.NewValidator()

	body := `{"title":"Staying Hydrated","content":"Drink water.","tags":["wellness"],"status":"published"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithCaller(req.Context(), author))
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("slug")
	c.SetParamValues("staying-hydrated")
	if err := h.GetPublished(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"published_at"`) {
		t.Errorf("expected published_at in %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := h.ListPublished(e.NewContext(httptest.NewRequest(http.MethodGet, "/?tag=wellness", nil), rec)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("expected one post, got %s", rec.Body.String())
	}
}

func TestHandler_Create_RequiresCaller(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	if err := h.Create(e.NewContext(req, httptest.NewRecorder())); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
