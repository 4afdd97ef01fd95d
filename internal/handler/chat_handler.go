package handler

import (
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/internal/pkg/serverutils"
	"ai-supportchat-be/internal/service"
	internalWS "ai-supportchat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatHandler struct {
	chat   service.IChatService
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatHandler(chat service.IChatService, hub *internalWS.Hub, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		sessionID := c.Query("session_id")
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, h.chat, h.logger)
			h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// GetSessions returns a snapshot of every known session for ops tooling.
func (h *ChatHandler) GetSessions(c *fiber.Ctx) error {
	sessions := h.chat.ListSessions()
	return c.JSON(serverutils.SuccessResponse("Sessions retrieved", sessions))
}

// GetConnectionCount reports how many live websocket connections the hub holds.
func (h *ChatHandler) GetConnectionCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"connections": h.hub.Count()})
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
	router.Get("/sessions", h.GetSessions)
	router.Get("/connections", h.GetConnectionCount)
}
