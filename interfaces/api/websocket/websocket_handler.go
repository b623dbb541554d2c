package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"taskboard/domain/models"
	websocketManager "taskboard/infrastructure/websocket"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

type WebSocketHandler struct {
	manager *websocketManager.WebSocketManager
}

func NewWebSocketHandler(manager *websocketManager.WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// roomFromQuery ?room=<project uuid> joins that project's room; anything else is used as is
func roomFromQuery(room string) string {
	if room == "" {
		return ""
	}
	if id, err := uuid.Parse(room); err == nil {
		return websocketManager.ProjectRoom(id.String())
	}
	return room
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	var userID uuid.UUID
	if p, ok := c.Locals(utils.PrincipalLocalKey).(*models.Principal); ok && p != nil {
		userID = p.ID
	}
	if userID == uuid.Nil {
		userID = uuid.New()
		logger.Debug("WebSocket: anonymous observer connected", "user_id", userID)
	}

	client := h.manager.RegisterClient(c, userID, roomFromQuery(c.Query("room", "")))
	defer h.manager.UnregisterClient(client)

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("WebSocket read ended", "client_id", client.ID, "error", err)
			break
		}
		h.manager.HandleClientMessage(client, message)
	}
}
