package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/metrics"
	"github.com/linesmerrill/legal-officer-api/models"
)

// EventLocSynchronized is pushed whenever a case is updated from the chain.
const EventLocSynchronized = "loc_synchronized"

const writeTimeout = 5 * time.Second

// LocUpdate identifies a synchronized case and its new status
type LocUpdate struct {
	ID     string                  `json:"id"`
	Status models.LocRequestStatus `json:"status"`
}

// LocUpdateEvent is the websocket message sent to subscribers
type LocUpdateEvent struct {
	Event string    `json:"event"`
	Data  LocUpdate `json:"data"`
}

// LocUpdates pushes case synchronization events to websocket clients. It is
// the listener of the case synchronizer.
type LocUpdates struct {
	Metrics *metrics.Metrics

	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]struct{}
	mutex    sync.Mutex
}

// NewLocUpdates creates an empty hub
func NewLocUpdates(m *metrics.Metrics) *LocUpdates {
	return &LocUpdates{
		Metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWebSocket subscribes the client to case updates until it disconnects
func (h *LocUpdates) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}
	h.add(conn)
	zap.S().Debugw("client connected to loc updates", "remote", r.RemoteAddr)

	// Clients only listen; reading drives ping/close handling and detects
	// disconnection.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	h.remove(conn)
	zap.S().Debugw("client disconnected from loc updates", "remote", r.RemoteAddr)
}

// LocSynchronized broadcasts the new state of loc to every subscriber.
// Clients that cannot be written to are dropped.
func (h *LocUpdates) LocSynchronized(loc *models.LocRequest) {
	event := LocUpdateEvent{
		Event: EventLocSynchronized,
		Data:  LocUpdate{ID: loc.ID, Status: loc.Status},
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			zap.S().Warnw("failed to push loc update", "id", loc.ID, "error", err)
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
	h.Metrics.SetSubscribers(len(h.clients))
}

// Subscribers returns the number of connected clients
func (h *LocUpdates) Subscribers() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *LocUpdates) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
	h.Metrics.SetSubscribers(0)
}

func (h *LocUpdates) add(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = struct{}{}
	h.Metrics.SetSubscribers(len(h.clients))
}

func (h *LocUpdates) remove(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		_ = conn.Close()
		delete(h.clients, conn)
	}
	h.Metrics.SetSubscribers(len(h.clients))
}
