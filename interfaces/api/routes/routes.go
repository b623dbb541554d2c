package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/infrastructure/websocket"
	"taskboard/interfaces/api/handlers"
)

// Options values the route tree needs besides handlers
type Options struct {
	JWTSecret string
	WSManager *websocket.WebSocketManager
}

func SetupRoutes(app *fiber.App, h *handlers.Handlers, opts Options) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api/v1")
	SetupTaskRoutes(api, h, opts.JWTSecret)

	SetupWebSocketRoutes(app, opts)
}
