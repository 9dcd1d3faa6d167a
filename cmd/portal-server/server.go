package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/config"
	"github.com/carepoint/portal/internal/domain/account"
	"github.com/carepoint/portal/internal/domain/appointment"
	"github.com/carepoint/portal/internal/domain/blog"
	"github.com/carepoint/portal/internal/domain/dashboard"
	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/domain/doctor"
	"github.com/carepoint/portal/internal/domain/document"
	"github.com/carepoint/portal/internal/domain/inventory"
	"github.com/carepoint/portal/internal/domain/labtest"
	"github.com/carepoint/portal/internal/domain/notification"
	"github.com/carepoint/portal/internal/domain/patient"
	"github.com/carepoint/portal/internal/domain/prescription"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/blobstore"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/metrics"
	"github.com/carepoint/portal/internal/platform/middleware"
	notify "github.com/carepoint/portal/internal/platform/notification"
	"github.com/carepoint/portal/internal/platform/throttle"
	"github.com/carepoint/portal/internal/platform/websocket"
)

// dependencies are the external resources the server is built on. Tests
// substitute pgxmock, an in-process limiter and a memory store.
type dependencies struct {
	pool    db.TxQuerier
	pinger  db.Pinger
	stats   func() *db.PoolStats
	limiter throttle.Limiter
	lockout throttle.Lockout
	store   blobstore.Store
}

// routeRegistrar is implemented by every domain handler.
type routeRegistrar interface {
	RegisterRoutes(api *echo.Group)
}

func newServer(cfg *config.Config, logger zerolog.Logger, deps dependencies) (*echo.Echo, error) {
	entries := auth.DefaultRoleTable()
	if cfg.AccessRules != nil {
		entries = cfg.AccessRules
	}
	roles, err := auth.NewRoleTable(entries)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpx.ErrorHandler(logger)
	e.Validator = httpx.NewValidator()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{HSTS: cfg.CookieSecure, PublicPrefix: "/api/public"}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.UploadLimit))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(deps.pinger, deps.stats))
	e.GET("/metrics", metrics.Handler())

	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	sessions := auth.NewSessionResolver(codec, auth.CookieConfig{Secure: cfg.CookieSecure, TTL: cfg.TokenTTL})

	guarded := func(g *echo.Group) {
		g.Use(auth.Session(sessions))
		g.Use(auth.Gate(roles))
		g.Use(middleware.RateLimit(deps.limiter, logger))
		g.Use(middleware.Audit(logger))
	}
	api := e.Group("/api")
	guarded(api)
	ws := e.Group("/ws")
	guarded(ws)

	hub := websocket.NewHub(logger)
	websocket.NewHandler(hub, cfg.CORSOrigins, logger).RegisterRoutes(ws)

	dir := directory.NewResolverPG(deps.pool)
	notifications := notification.NewRepoPG(deps.pool)
	emitter := notification.NewEmitter(notifications, notify.NewTemplateEngine(), hub, logger)

	accounts := account.NewService(account.NewRepoPG(deps.pool), codec, deps.lockout, cfg.TokenTTL)
	documents := document.NewService(document.NewRepoPG(deps.pool), deps.store, dir, middleware.ParseLimit(cfg.UploadLimit))

	handlers := []routeRegistrar{
		account.NewHandler(accounts, sessions),
		patient.NewHandler(patient.NewService(patient.NewRepoPG(deps.pool), dir)),
		doctor.NewHandler(doctor.NewService(doctor.NewRepoPG(deps.pool), dir)),
		appointment.NewHandler(appointment.NewService(appointment.NewRepoPG(deps.pool), dir, emitter)),
		prescription.NewHandler(prescription.NewService(prescription.NewRepoPG(deps.pool), dir, emitter)),
		labtest.NewHandler(labtest.NewService(labtest.NewRepoPG(deps.pool), dir, emitter)),
		inventory.NewHandler(inventory.NewService(inventory.NewRepoPG(deps.pool))),
		blog.NewHandler(blog.NewService(blog.NewRepoPG(deps.pool))),
		document.NewHandler(documents),
		notification.NewHandler(notification.NewService(notifications)),
		dashboard.NewHandler(dashboard.NewService(dashboard.NewRepoPG(deps.pool), dir)),
	}
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return e, nil
}
