// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the router on GET /metrics.
package metrics

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts signup, login, logout and password lifecycle attempts.
// Labels:
//   - event: "signup", "login", "logout", "password_change", "password_forgot", "password_reset"
//   - result: "ok" or a short failure reason (e.g. "conflict", "invalid_credentials", "error")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events, by event and result.",
	},
	[]string{"event", "result"},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartOperationsTotal counts cart mutations and reads.
// Labels:
//   - op: "get", "add", "set_quantity", "remove", "merge", "adopt"
//   - owner: "user" or "guest"
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Total number of cart operations, by operation and owner kind.",
	},
	[]string{"op", "owner"},
)

// CartMergeLinesTotal counts guest lines seen by the reconciler.
// Label:
//   - result: "accepted" or "skipped" (malformed product reference)
var CartMergeLinesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_merge_lines_total",
		Help:      "Total number of guest cart lines processed during merges.",
	},
	[]string{"result"},
)

// ── Wishlist metrics ──────────────────────────────────────────────────────────

// WishlistOperationsTotal counts wishlist changes.
// Labels:
//   - op: "add" or "remove"
//   - result: "added", "exists", "removed", "not_found" or "error"
var WishlistOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wishlist_operations_total",
		Help:      "Total number of wishlist operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// PasswordResetNotificationsTotal counts reset notices handled by the dispatcher.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var PasswordResetNotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_notifications_total",
		Help:      "Total number of password reset notifications, by delivery result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks the number of notices waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notices pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

var (
	httpOnce       sync.Once
	httpMiddleware echo.MiddlewareFunc
)

// HTTPMiddleware returns the request metrics middleware. The underlying
// collectors are registered once per process, however many routers are built.
func HTTPMiddleware() echo.MiddlewareFunc {
	httpOnce.Do(func() {
		httpMiddleware = echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace: namespace,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		})
	})
	return httpMiddleware
}

// Handler serves the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echoprometheus.NewHandler()
}
