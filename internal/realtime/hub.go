// Package realtime pushes server events to connected dashboards over WebSocket.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is the envelope of every pushed event.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub tracks open connections by user. A user may hold several connections,
// one per open tab.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	onConnect    func(userID string)
	onDisconnect func(userID string)
}

// NewHub creates a Hub. allowedOrigin "*" accepts any origin.
func NewHub(allowedOrigin string, logger *zap.Logger) *Hub {
	h := &Hub{
		logger:  logger,
		clients: make(map[string]map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}
	return h
}

// OnConnect registers fn to run when a user opens their first connection.
func (h *Hub) OnConnect(fn func(userID string)) { h.onConnect = fn }

// OnDisconnect registers fn to run when a user closes their last connection.
func (h *Hub) OnDisconnect(fn func(userID string)) { h.onDisconnect = fn }

// Serve upgrades the request and serves the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(h, conn, userID)
	h.register(c)

	go c.writePump()
	go c.readPump()
	return nil
}

// SendToUser delivers msg to every connection of userID and returns how
// many connections accepted it.
func (h *Hub) SendToUser(userID string, msg Message) int {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode realtime message", zap.String("type", msg.Type), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
			delivered++
		default:
			h.logger.Warn("dropping realtime message for slow client", zap.String("user_id", userID))
		}
	}
	return delivered
}

// IsConnected reports whether userID has at least one open connection.
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectedUsers returns the number of users with an open connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	conns, ok := h.clients[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
	first := len(conns) == 1
	h.mu.Unlock()

	h.logger.Debug("realtime client connected", zap.String("user_id", c.userID))
	if first && h.onConnect != nil {
		h.onConnect(c.userID)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	conns, ok := h.clients[c.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := conns[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(conns, c)
	close(c.send)
	last := len(conns) == 0
	if last {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	h.logger.Debug("realtime client disconnected", zap.String("user_id", c.userID))
	if last && h.onDisconnect != nil {
		h.onDisconnect(c.userID)
	}
}
