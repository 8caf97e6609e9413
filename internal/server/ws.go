package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mocap-replay/internal/detector"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is the payload sent to websocket clients on every flush.
type Message struct {
	RunID string         `json:"run_id"`
	Frame int            `json:"frame"`
	Data  *detector.Tree `json:"data"`
}

// Hub broadcasts flushed buffers to websocket clients. It is a consumer
// stage of the replay chain.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	runID   string
}

// NewHub creates a Hub with no clients.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// SetRunID sets the run ID attached to subsequent messages.
func (h *Hub) SetRunID(id string) {
	h.mu.Lock()
	h.runID = id
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("server: websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Update sends buf to every connected client and passes it on unchanged.
func (h *Hub) Update(buf *detector.Tree, frame int) (*detector.Tree, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return buf, frame
	}

	msg, err := json.Marshal(Message{RunID: h.runID, Frame: frame, Data: buf})
	if err != nil {
		slog.Error("server: encode flush", "frame", frame, "error", err)
		return buf, frame
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Debug("server: dropping client", "remote", conn.RemoteAddr().String(), "error", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return buf, frame
}
