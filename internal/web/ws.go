package web

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"notesd/internal/store"
)

var upgrader = websocket.Upgrader{
	// Local single-user server; the browser UI is served from the same
	// origin but file:// clients carry no origin header at all.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan store.Event
}

// Hub fans change events out to every connected WebSocket client. Delivery
// is best-effort: a client that cannot keep up is disconnected.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan store.Event
	register   chan *wsClient
	unregister chan *wsClient
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan store.Event, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			slog.Debug("ws client connected", "client", client.id, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Debug("ws client disconnected", "client", client.id, "total", len(h.clients))
			}

		case ev := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- ev:
				default:
					delete(h.clients, client)
					close(client.send)
					slog.Warn("ws client dropped, send buffer full", "client", client.id)
				}
			}
		}
	}
}

// Publish implements store.Notifier.
func (h *Hub) Publish(ev store.Event) {
	h.broadcast <- ev
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}
	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan store.Event, 32),
	}
	s.hub.register <- client

	go client.writeLoop()
	client.readLoop(s.hub)
}

func (c *wsClient) writeLoop() {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			slog.Debug("ws write failed", "client", c.id, "err", err)
			return
		}
	}
}

// readLoop drains the connection until the client goes away. Incoming
// messages are ignored; the channel is push-only.
func (c *wsClient) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
