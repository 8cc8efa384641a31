package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected websocket. A client that cannot keep
// up is dropped. New clients get the most recent frame straight away.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*client
	last    []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{logger: logger, clients: map[string]*client{}}
}

func (h *Hub) Broadcast(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("marshal frame", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for id, c := range h.clients {
		select {
		case c.send <- b:
		default:
			delete(h.clients, id)
			close(c.send)
			h.logger.Warn("dropping slow client", "client_id", id)
		}
	}
}

// Clients is the number of connected websockets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Last returns the most recent frame, or nil before the first broadcast.
func (h *Hub) Last() json.RawMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	if h.last != nil {
		c.send <- h.last
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// ServeWS upgrades the request and streams frames until the peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 64)}
	h.add(c)
	h.logger.Info("client connected", "client_id", c.id, "remote", r.RemoteAddr)

	go c.writer()
	// The page never sends anything; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.logger.Info("client disconnected", "client_id", c.id)
}

func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
