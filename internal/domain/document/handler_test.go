package document

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/auth"
)

func multipartBody(t *testing.T, fileName, contentType, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHandler_UploadAndDownload(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body, ct := multipartBody(t, "scan.png", "image/png", "\x89PNG", map[string]string{"category": "imaging", "description": "knee"})
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set(echo.HeaderContentType, ct)
	req = req.WithContext(auth.WithCaller(req.Context(), f.patient))
	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "storage_key") {
		t.Error("storage key must not be exposed")
	}

	var id string
	for k := range f.repo.data {
		id = k.String()
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithCaller(req.Context(), f.patient))
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Download(c); err != nil {
		t.Fatalf("download: %v", err)
	}
	if rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Errorf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), `filename=scan.png`) {
		t.Errorf("unexpected disposition %q", rec.Header().Get(echo.HeaderContentDisposition))
	}
	if rec.Body.String() != "\x89PNG" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHandler_Upload_MissingFile(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("category", "other")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req = req.WithContext(auth.WithCaller(req.Context(), f.patient))

	if err := h.Upload(e.NewContext(req, httptest.NewRecorder())); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
