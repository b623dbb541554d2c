package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"taskboard/interfaces/api/middleware"
	websocketHandler "taskboard/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, opts Options) {
	wsHandler := websocketHandler.NewWebSocketHandler(opts.WSManager)

	// observers may connect anonymously; a valid token only tags the client
	app.Use("/ws", middleware.Optional(opts.JWTSecret), wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
