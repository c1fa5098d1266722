package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mockinterview/internal/logging"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/services"
)

// HubConfig tunes WebSocket connections.
type HubConfig struct {
	HeartbeatInterval time.Duration
	ConnectionTimeout time.Duration
	WriteTimeout      time.Duration
	MessageBufferSize int
	ReadBufferSize    int
	WriteBufferSize   int
	MaxMessageSize    int64
}

// DefaultHubConfig returns the settings used by the daemon.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		HeartbeatInterval: 30 * time.Second,
		ConnectionTimeout: 60 * time.Second,
		WriteTimeout:      10 * time.Second,
		MessageBufferSize: 256,
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		MaxMessageSize:    512,
	}
}

// Hub fans orchestrator events out to WebSocket subscribers of each session.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu     sync.RWMutex
	subs   map[string]map[*Connection]struct{}
	closed bool
}

// NewHub builds a hub. Zero config fields take their defaults.
func NewHub(cfg HubConfig, logger *slog.Logger) *Hub {
	def := DefaultHubConfig()
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = def.ConnectionTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.MessageBufferSize <= 0 {
		cfg.MessageBufferSize = def.MessageBufferSize
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = def.ReadBufferSize
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = def.WriteBufferSize
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// The interview UI is served from other origins; the bearer token gates access.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logging.NewComponentLogger(logger, "api-hub"),
		subs:   make(map[string]map[*Connection]struct{}),
	}
}

// Publish delivers an event to the session's subscribers without blocking.
func (h *Hub) Publish(event orchestrator.Event) {
	data, err := json.Marshal(Message{
		Type:      string(event.Type),
		SessionID: event.SessionID,
		Data:      event,
		Timestamp: event.At.UnixMilli(),
	})
	if err != nil {
		h.logger.Error("failed to encode event", logging.String("event", string(event.Type)), logging.Error(err))
		return
	}
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.subs[event.SessionID]))
	for c := range h.subs[event.SessionID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(data) {
			logging.WarnWithContext(h.logger, "websocket client too slow, disconnecting", "websocket_backpressure",
				logging.String(logging.FieldSessionID, event.SessionID),
				logging.String("connection", c.id),
				logging.String(logging.FieldImpact, "client must reconnect to resume live updates"),
			)
			h.unregister(c)
		}
	}
}

// Subscribers counts open connections, across all sessions when sessionID is empty.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sessionID != "" {
		return len(h.subs[sessionID])
	}
	total := 0
	for _, conns := range h.subs {
		total += len(conns)
	}
	return total
}

// Serve upgrades the request and streams the session's events until the
// client goes away or the hub closes. The initial frame is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, initial Message) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return services.Wrap(services.ErrSessionClosed, "api", "websocket", "event hub is shut down", nil)
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return nil
	}
	c := newConnection(h, ws, sessionID)
	if data, err := json.Marshal(initial); err == nil {
		c.enqueue(data)
	}
	if !h.register(c) {
		c.closeSend()
		_ = ws.Close()
		return nil
	}
	h.logger.Debug("websocket subscribed",
		logging.String(logging.FieldSessionID, sessionID),
		logging.String("connection", c.id),
	)
	go c.writePump()
	c.readPump()
	return nil
}

func (h *Hub) register(c *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	conns, ok := h.subs[c.sessionID]
	if !ok {
		conns = make(map[*Connection]struct{})
		h.subs[c.sessionID] = conns
	}
	conns[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	conns, ok := h.subs[c.sessionID]
	if ok {
		if _, member := conns[c]; member {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.subs, c.sessionID)
			}
			c.closeSend()
		}
	}
	h.mu.Unlock()
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]map[*Connection]struct{})
	h.mu.Unlock()
	for _, conns := range subs {
		for c := range conns {
			c.closeSend()
		}
	}
}
