package websocket

import (
	"context"
	"encoding/json"
	"time"

	"ai-supportchat-be/internal/dto"
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/internal/pkg/serverutils"
	"ai-supportchat-be/internal/service"
	ragsession "ai-supportchat-be/pkg/rag/session"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// queryBuffer bounds how many queries may wait behind an active stream.
	queryBuffer = 16
)

// Client is the middleman between one websocket connection and its session
// engine. Queries are handed to a dedicated pipeline goroutine so the read
// loop stays free to observe cancel and confirm frames mid-stream; those two
// act on the engine directly, which is what makes cancellation responsive.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID for this connection.
	SessionID string

	// Buffered channel of outbound frames, drained by writePump.
	outbound chan []byte

	// Queued inbound queries, consumed by pipelineLoop in arrival order.
	queries chan queuedQuery

	engine *ragsession.Engine
	chat   service.IChatService
	logger logger.ILogger
}

type queuedQuery struct {
	id   string
	text string
}

func newClient(hub *Hub, conn *websocket.Conn, sessionID string, chat service.IChatService, log logger.ILogger) *Client {
	client := &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		outbound:  make(chan []byte, 256),
		queries:   make(chan queuedQuery, queryBuffer),
		chat:      chat,
		logger:    log,
	}
	client.engine = chat.OpenSession(sessionID, client)
	return client
}

// Send implements ragsession.Sink. Frames are serialized here and queued for
// writePump; a peer that stopped reading gets frames dropped rather than
// stalling the pipeline goroutine.
func (c *Client) Send(frame interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("Client", "Failed to marshal frame", map[string]interface{}{
			"session_id": c.SessionID,
			"error":      err.Error(),
		})
		return
	}
	// The outbound channel may already be closed by the hub on unregister.
	defer func() { _ = recover() }()
	select {
	case c.outbound <- data:
	default:
		c.logger.Warn("Client", "Send buffer full, dropping frame", map[string]interface{}{
			"session_id": c.SessionID,
		})
	}
}

// readPump pumps frames from the websocket connection into the session.
func (c *Client) readPump() {
	defer func() {
		c.chat.CloseSession(c.engine)
		close(c.queries)
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Client", "Read error", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			break
		}
		c.dispatch(data)
	}
}

// dispatch parses and routes one inbound frame. Malformed frames produce an
// error frame and leave all session state untouched.
func (c *Client) dispatch(data []byte) {
	var frame dto.ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.Warn("Client", "Invalid message format", map[string]interface{}{"session_id": c.SessionID})
		c.Send(dto.NewErrorFrame("Invalid message format"))
		return
	}
	if err := serverutils.ValidateRequest(frame); err != nil {
		c.logger.Warn("Client", "Frame validation failed", map[string]interface{}{
			"session_id": c.SessionID,
			"error":      err.Error(),
		})
		c.Send(dto.NewErrorFrame("Invalid message format"))
		return
	}

	switch frame.Type {
	case dto.ClientFrameMessage:
		select {
		case c.queries <- queuedQuery{id: frame.Id, text: frame.Text}:
		default:
			c.Send(dto.NewErrorFrame("Too many queued messages"))
		}
	case dto.ClientFrameCancel:
		c.engine.HandleCancel()
	case dto.ClientFrameConfirmAction:
		c.engine.HandleConfirm(frame.SuggestionId)
	}
}

// pipelineLoop runs queued queries one at a time in arrival order.
func (c *Client) pipelineLoop() {
	for q := range c.queries {
		c.engine.HandleMessage(context.Background(), q.id, q.text)
	}
}

// writePump pumps frames from the outbound channel to the websocket
// connection. One frame per websocket message so the peer can parse each
// JSON payload on its own.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.outbound:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
