// Package metrics defines the Prometheus collectors for the portal and the
// echo middleware and handler that expose them.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portal"

// HTTPRequestsTotal counts finished requests by route template and status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency by route template.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// NotificationsTotal counts emitter outcomes.
// Label result: "delivered" or "failed".
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification emit attempts, by template and result.",
	},
	[]string{"template", "result"},
)

// AuthFailuresTotal counts rejected credentials and gate denials.
// Label reason: "invalid_token", "missing_caller", "role_denied", "no_rule", "bad_password", "locked_out".
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication and authorization failures, by reason.",
	},
	[]string{"reason"},
)

// BookingConflictsTotal counts appointment bookings refused for a taken slot.
var BookingConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Appointment bookings rejected because the doctor's slot was taken.",
	},
)

// DegradedSectionsTotal counts best-effort sections that fell back to empty.
// Label reason: "missing_table" or "query_error".
var DegradedSectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degraded_sections_total",
		Help:      "Aggregate response sections that degraded to an empty result.",
	},
	[]string{"section", "reason"},
)

// RateLimitedTotal counts requests refused by a limiter.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by rate limiting, by scope.",
	},
	[]string{"scope"},
)

// Middleware records request count and latency. Routes are labelled by their
// registered template (c.Path()) so ids do not explode cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// Render now so the recorded status is the one the client sees.
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status

			method := c.Request().Method
			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
