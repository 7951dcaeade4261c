package api

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires every endpoint onto the app. Debug routes are only
// registered when enableDebug is set.
func RegisterRoutes(app *fiber.App, h *Handler, enableDebug bool) {
	app.Use(requestLogger())

	app.Get("/", h.Home)
	app.Get("/chatbot", h.Chatbot)
	app.Get("/about", h.About)
	app.Get("/health", h.Health)
	app.Post("/chat", h.Chat)

	if enableDebug {
		app.Get("/debug/database", h.DebugDatabase)
		app.Post("/debug/recreate-database", h.RecreateDatabase)
	}

	if h.cfg != nil && h.cfg.Server.StaticDir != "" {
		app.Static("/static", h.cfg.Server.StaticDir)
	}
}
