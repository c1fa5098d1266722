package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mockinterview/internal/logging"
)

// Connection is one WebSocket subscriber. Clients only listen; inbound
// frames are read to service pongs and detect disconnects.
type Connection struct {
	id        string
	sessionID string
	hub       *Hub
	ws        *websocket.Conn
	send      chan []byte

	mu     sync.Mutex
	closed bool
}

func newConnection(h *Hub, ws *websocket.Conn, sessionID string) *Connection {
	c := &Connection{
		id:        uuid.NewString(),
		sessionID: sessionID,
		hub:       h,
		ws:        ws,
		send:      make(chan []byte, h.cfg.MessageBufferSize),
	}
	return c
}

// enqueue reports false when the buffer is full.
func (c *Connection) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.ws.Close()
	}()
	cfg := c.hub.cfg
	c.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ConnectionTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.ConnectionTimeout))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed",
					logging.String(logging.FieldSessionID, c.sessionID),
					logging.Error(err),
				)
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(time.Duration(float64(cfg.HeartbeatInterval) * 0.9))
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
