package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Kalaith/last-hope/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamMessage is one frame on the day stream.
type StreamMessage struct {
	Type   string            `json:"type"` // "status" or "day"
	Status *engine.Status    `json:"status,omitempty"`
	Day    *engine.DayReport `json:"day,omitempty"`
}

// Hub fans day reports out to every connected watcher.
type Hub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	conn *websocket.Conn
	send chan StreamMessage
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*streamClient]struct{})}
}

// Broadcast queues rep for every client. A client whose buffer is full is
// disconnected rather than allowed to stall the loop.
func (h *Hub) Broadcast(rep engine.DayReport) {
	msg := StreamMessage{Type: "day", Day: &rep}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slog.Warn("stream client too slow, dropping")
			h.remove(c)
		}
	}
}

// Clients returns the number of connected watchers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *streamClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *streamClient) {
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()
}

// remove is called with the lock held.
func (h *Hub) remove(c *streamClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "stream not available")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &streamClient{conn: conn, send: make(chan StreamMessage, sendBuffer)}
	st := s.Sim.Status()
	c.send <- StreamMessage{Type: "status", Status: &st}
	s.Hub.add(c)
	slog.Debug("stream client connected", "remote", r.RemoteAddr, "clients", s.Hub.Clients())

	go c.writePump()
	go c.readPump(s.Hub)
}

// readPump discards anything the client sends and notices when it leaves.
func (c *streamClient) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("failed to set read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("stream read error", "error", err)
			}
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("stream write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
