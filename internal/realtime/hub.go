// Package realtime provides the WebSocket hub that pushes grocery list
// changes to connected clients.
//
// The hub broadcasts one event per successful mutation so open pages stay
// in sync without polling. Delivery is best-effort: there is no
// acknowledgment, no retry, and no replay for clients that reconnect
// later.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Event names sent to clients.
const (
	// EventConnected is the one-time welcome sent to a client on connect.
	EventConnected = "server:connected"

	// EventCreated carries the full item created by a POST.
	EventCreated = "groceries:created"

	// EventUpdated carries the full item after a PUT.
	EventUpdated = "groceries:updated"

	// EventDeleted carries {"id": N} after a DELETE.
	EventDeleted = "groceries:deleted"

	// EventRefresh carries the full list after an out-of-band change to
	// the store file (CLI write, import, restored backup).
	EventRefresh = "groceries:refresh"
)

// Event is the wire envelope for all server-to-client messages.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals data into an Event envelope.
func NewEvent(name string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: raw}, nil
}

// Hub manages WebSocket subscribers and broadcasts events to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewHub creates a hub. Call Start before accepting connections and Stop
// on shutdown.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start launches the broadcast loop.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.broadcastLoop()
}

// Stop closes all client connections and shuts down the broadcast loop.
func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
}

// Broadcast queues an event for delivery to all connected clients.
// Never blocks: if the queue is full the event is dropped with a log line.
func (h *Hub) Broadcast(evt Event) {
	select {
	case h.broadcast <- evt:
	case <-h.ctx.Done():
		return
	default:
		h.logger.Printf("Warning: broadcast channel full, dropping %s", evt.Name)
	}
}

// broadcastLoop delivers queued events to all clients.
func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case evt := <-h.broadcast:
			data, err := json.Marshal(evt)
			if err != nil {
				h.logger.Printf("Failed to marshal event %s: %v", evt.Name, err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			// Write outside the lock so a slow client doesn't block
			// registration of new ones.
			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					h.logger.Printf("Failed to send to client: %v", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

// HandleWS upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // no auth, same as the REST surface
	})
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Printf("Client connected (total: %d)", clientCount)

	// One-time welcome so the client knows the channel is live.
	welcome, err := NewEvent(EventConnected, map[string]string{"message": "welcome"})
	if err == nil {
		data, _ := json.Marshal(welcome)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = conn.Write(ctx, websocket.MessageText, data)
		cancel()
	}

	go h.readLoop(conn)
}

// readLoop drains client messages and detects disconnects. Client
// messages are not processed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		_, _, err := conn.Read(h.ctx)
		if err != nil {
			return
		}
	}
}

// removeClient safely evicts a client connection.
func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		clientCount := len(h.clients)
		h.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Printf("Client disconnected (total: %d)", clientCount)
	} else {
		h.clientsMu.Unlock()
	}
}

// ClientCount returns the current number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
