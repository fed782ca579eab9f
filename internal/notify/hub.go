// Package notify broadcasts named refresh signals to subscribed views over
// websockets. External dashboards listen for the signals emitted after a
// successful batch commit and reload their data.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/metrics"
)

// The two named refresh signals
const (
	SignalRefreshPicks = "refreshPicks"
	SignalRefreshStats = "refreshStats"
)

// Message is the wire format of a refresh signal
type Message struct {
	Signal    string    `json:"signal"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of subscribed clients and broadcasts signals to them
type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewHub creates a signal hub
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and subscribes the client until it
// disconnects. Clients only listen; inbound frames are drained and dropped.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade refresh-signal subscriber")
		return
	}

	h.register(conn)
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// RefreshPicks broadcasts the refreshPicks signal
func (h *Hub) RefreshPicks() {
	h.broadcast(SignalRefreshPicks)
}

// RefreshStats broadcasts the refreshStats signal
func (h *Hub) RefreshStats() {
	h.broadcast(SignalRefreshStats)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	metrics.ConnectedClients.Set(0)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	metrics.ConnectedClients.Set(float64(len(h.clients)))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		_ = conn.Close()
	}
	metrics.ConnectedClients.Set(float64(len(h.clients)))
}

func (h *Hub) broadcast(signal string) {
	msg := Message{Signal: signal, Timestamp: time.Now().UTC()}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var dropped []*websocket.Conn
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			dropped = append(dropped, conn)
		}
	}
	for _, conn := range dropped {
		h.unregister(conn)
	}

	metrics.RefreshSignalsTotal.WithLabelValues(signal).Inc()
	h.logger.WithFields(logrus.Fields{
		"signal":  signal,
		"clients": len(conns) - len(dropped),
	}).Debug("Refresh signal broadcast")
}
