package websocket

import (
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs wires a freshly upgraded connection into the hub and starts its
// pumps. Blocks until the connection closes.
func ServeWs(hub *Hub, conn *websocket.Conn, chat service.IChatService, log logger.ILogger) {
	sessionID := conn.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	client := newClient(hub, conn, sessionID, chat, log)
	hub.register <- client

	go client.writePump()
	go client.pipelineLoop()
	client.readPump()
}
