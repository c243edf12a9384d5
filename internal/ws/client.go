package ws

import (
	"log/slog"
	"time"

	"skillconnect/internal/models"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message
	writeWait = 10 * time.Second

	// Time allowed to read next pong message
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send small control frames
	maxMessageSize = 4 * 1024

	sendBufferSize = 256
)

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	id       string
	userID   string
	userName string

	// closed is owned by the hub and guarded by hub.mu.
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, id, userID, userName string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		id:       id,
		userID:   userID,
		userName: userName,
	}
}

// ReadPump pumps messages from the WebSocket. Whatever ends it, the client
// is unregistered.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("[CLIENT] Unexpected close", "user", c.userID, "conn", c.id, "error", err)
			}
			break
		}

		c.handleClientMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("[CLIENT] Failed to write message", "user", c.userID, "conn", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("[CLIENT] Failed to send ping", "user", c.userID, "conn", c.id, "error", err)
				return
			}
		}
	}
}

func (c *Client) handleClientMessage(message []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		slog.Warn("[CLIENT] Error unmarshaling message", "user", c.userID, "conn", c.id, "error", err)
		return
	}

	switch msg.Type {
	case "ping":
		c.hub.reply(c, models.EventPong, nil)

	case "typing:start", "typing:stop":
		if msg.Data.To == "" || msg.Data.To == c.userID {
			slog.Debug("[CLIENT] Typing event without valid target", "user", c.userID)
			return
		}
		c.hub.EmitToUser(msg.Data.To, models.EventTyping, models.TypingData{
			UserID:   c.userID,
			UserName: c.userName,
			Typing:   msg.Type == "typing:start",
		})

	case "":
		slog.Warn("[CLIENT] No 'type' field in message", "user", c.userID, "conn", c.id)

	default:
		slog.Warn("[CLIENT] Unknown event type", "type", msg.Type, "user", c.userID, "conn", c.id)
	}
}
