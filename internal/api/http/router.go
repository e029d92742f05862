package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/user-orders-service/internal/api/http/handlers"
	"github.com/spec-kit/user-orders-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Orders  *handlers.OrdersHandler
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Fixed paths are registered before the
// parameterized user routes so /health and /metrics are never captured by
// the :userId segment.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	app.Post("/", cfg.Users.Create)
	app.Get("/", cfg.Users.List)

	app.Get("/:userId/orders/total-price", cfg.Orders.TotalPrice)
	app.Get("/:userId/orders", cfg.Orders.List)
	app.Put("/:userId/orders", cfg.Orders.Add)

	app.Get("/:userId", cfg.Users.Get)
	app.Put("/:userId", cfg.Users.Update)
	app.Delete("/:userId", cfg.Users.Delete)
}
