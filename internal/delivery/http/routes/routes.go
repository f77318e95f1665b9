package routes

import (
	"github.com/gofiber/fiber/v3"

	"sharespace/internal/delivery/http/handler"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/ws"
)

// Registry holds every HTTP handler so route registration is one call
// from bootstrap.
type Registry struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Listings *handler.ListingHandler
	Chat     *handler.ChatHandler
	ChatWS   *ws.Handler

	AuthMW *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if r == nil || app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerWS(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r)
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ChatWS == nil {
		return
	}
	app.Get("/ws/chat/:conversation_id", r.ChatWS.HandleChatWS)
}
