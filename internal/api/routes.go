package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/clarity-app/clarity-backend/internal/api/handlers"
	"github.com/clarity-app/clarity-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services) {
	// API routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "clarity-backend",
		})
	})

	// Session management
	api.Post("/sessions", handlers.CreateSession(svc))
	api.Get("/sessions/:id", handlers.GetSession(svc))
	api.Get("/sessions/:id/turns", handlers.GetSessionTurns(svc))
	api.Post("/sessions/:id/end", handlers.EndSession(svc))

	// Chat
	api.Post("/chat/message", handlers.PostMessage(svc))

	// Single-shot transforms
	api.Post("/adapt", handlers.Adapt(svc))
	api.Post("/explain", handlers.Explain(svc))
	api.Get("/adaptations/:id", handlers.GetAdaptation(svc))

	// Settings
	api.Get("/settings/profile", handlers.GetProfile(svc))
	api.Put("/settings/profile", handlers.UpdateProfile(svc))

	// WebSocket chat
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(handlers.ChatSocket(svc)))
}
