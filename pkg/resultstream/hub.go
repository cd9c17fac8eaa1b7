// Package resultstream pushes a backtest run's capital-history ticks and
// trade fills to connected dashboard clients over WebSocket.
package resultstream

import (
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventType distinguishes the kinds of messages pushed to clients.
type EventType string

const (
	EventCapitalTick EventType = "capital_tick"
	EventTradeFilled EventType = "trade_filled"
	EventRunComplete EventType = "run_complete"
)

// Event is a single message pushed to every connected client.
type Event struct {
	RunID string      `json:"run_id"`
	Type  EventType   `json:"type"`
	Data  interface{} `json:"data"`
}

// HubConfig holds hub configuration.
type HubConfig struct {
	ClientBufferSize int // per-client outbound buffer (default: 64)
	Logger           *zap.Logger
}

// Hub fans a backtest run's events out to every connected WebSocket
// client. A single hub serves one run at a time; callers create a new
// hub per run.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*client]struct{}
	logger   *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub creates a new result-stream hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.ClientBufferSize <= 0 {
		cfg.ClientBufferSize = 64
	}
	return &Hub{
		cfg:      cfg,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
		logger:   cfg.Logger,
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and registers
// the client to receive every subsequent Broadcast call.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("resultstream-upgrade-failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan Event, h.cfg.ClientBufferSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	ActiveClients.Set(float64(len(h.clients)))

	h.logger.Info("resultstream-client-connected", zap.String("remote-addr", r.RemoteAddr))

	go h.writePump(c)
	go h.readPump(c)
}

// readPump drains and discards incoming frames, detecting client
// disconnects (clients only ever read from this stream).
func (h *Hub) readPump(c *client) {
	defer h.removeClient(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close() //nolint:errcheck
	for event := range c.send {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("resultstream-marshal-failed", zap.Error(err))
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	ActiveClients.Set(float64(count))
	h.logger.Info("resultstream-client-disconnected")
}

// Broadcast pushes an event to every connected client, dropping it for
// any client whose outbound buffer is full rather than blocking the
// caller.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- event:
			TicksBroadcastTotal.Inc()
		default:
			TicksDroppedTotal.WithLabelValues("client_buffer_full").Inc()
			h.logger.Warn("resultstream-tick-dropped", zap.String("reason", "client_buffer_full"))
		}
	}
}

// Close disconnects every client and releases hub resources.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close() //nolint:errcheck
		delete(h.clients, c)
	}
	ActiveClients.Set(0)
}
