package routes

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, reg *Registry) {
	if r == nil || reg == nil || reg.AuthMW == nil {
		return
	}

	requireAuth := reg.AuthMW.Middleware()
	optionalAuth := reg.AuthMW.OptionalMiddleware()

	if reg.Auth != nil {
		reg.Auth.RegisterRoutes(r.Group("/auth"))
	}

	if reg.Users != nil {
		reg.Users.RegisterRoutes(r.Group("/users", requireAuth))
	}

	if reg.Listings != nil {
		reg.Listings.RegisterRoutes(r.Group("/listings"), optionalAuth, requireAuth)
	}

	if reg.Chat != nil {
		reg.Chat.RegisterRoutes(r.Group("/chat", requireAuth))
	}
}
