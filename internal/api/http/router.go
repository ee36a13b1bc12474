package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticket-mgt/ticket-api/internal/api/http/handlers"
	"github.com/ticket-mgt/ticket-api/internal/auth"
	apperrors "github.com/ticket-mgt/ticket-api/pkg/util"
)

// APIPrefix is the alternate mount point used by the browser client.
const APIPrefix = "/api"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Tickets *handlers.TicketsHandler
	Guard   *auth.Guard
}

// RegisterRoutes wires HTTP routes. The resource table is mounted at the root
// and again under APIPrefix; anything unmatched ends in a 404 naming the path.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
		app.Get("/metrics", cfg.Health.Metrics)
	}

	registerResources(app, cfg)
	registerResources(app.Group(APIPrefix), cfg)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewRouteNotFound(c.Method(), c.Path())
	})
}

func registerResources(r fiber.Router, cfg RouteConfig) {
	requireAuth := cfg.Guard.Handle

	r.Post("/users/register", cfg.Users.Register)
	r.Post("/users", cfg.Users.Login)
	r.Get("/users", requireAuth, cfg.Users.ListUsers)
	r.Get("/users/:id", requireAuth, cfg.Users.GetUser)

	r.Get("/tickets", cfg.Tickets.ListTickets)
	r.Get("/tickets/:id", cfg.Tickets.GetTicket)
	r.Post("/tickets", requireAuth, cfg.Tickets.CreateTicket)
	r.Put("/tickets/:id", requireAuth, cfg.Tickets.UpdateTicket)
	r.Delete("/tickets/:id", requireAuth, cfg.Tickets.DeleteTicket)
}
