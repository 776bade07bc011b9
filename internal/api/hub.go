/*
Package api
File: hub.go
Description:
    The WebSocket Hub pushes game notifications to every connected frontend.

    It maintains the registry of active clients and the broadcast channel.
    The Session publishes engine events into the Hub; the Hub wraps each one
    in the standard Message envelope and writes it to every socket.

    Architecture:
    - Hub: the single manager, run with `go hub.Run(ctx)`.
    - Client: one browser connection, identified by a uuid.
    - ServeWs: the HTTP handler that upgrades a GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/everforgeworks/data-empire/internal/game"
	"github.com/everforgeworks/data-empire/internal/middleware"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Clients only ever send control frames.
	maxMessageSize = 512

	broadcastBuffer = 256
)

// Message defines the standard JSON envelope for all real-time communication.
type Message struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`    // Event type, e.g. "purchase", "level_up"
	Payload   interface{} `json:"payload"` // The game.Event itself
	Sender    string      `json:"sender"`  // Always "engine" for now
	Timestamp time.Time   `json:"timestamp"`
}

// Client represents a single connected browser tab.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHub creates a Hub that accepts sockets from allowedOrigin (the frontend)
// and from the server's own origin. Run must be started before clients connect.
func NewHub(allowedOrigin string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     slog.With("component", "hub"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.OriginAllowed(r, allowedOrigin)
		},
	}
	return h
}

// Run is the main event loop for the Hub. It returns when ctx is cancelled,
// closing every client connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.logger.Info("Hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("Client connected", "client_id", client.id, "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("Client disconnected", "client_id", client.id, "clients", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full: the client hung or disconnected.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Dropping slow client", "client_id", client.id)
				}
			}
		}
	}
}

// Publish implements game.Publisher. It never blocks the game session: when
// the broadcast buffer is full the notification is dropped.
func (h *Hub) Publish(ev game.Event) {
	data, err := json.Marshal(Message{
		ID:        uuid.NewString(),
		Type:      string(ev.Type),
		Payload:   ev,
		Sender:    "engine",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("Failed to marshal notification", "type", ev.Type, "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Broadcast buffer full, notification dropped", "type", ev.Type)
	}
}

// ServeWs upgrades the request and registers the new client with the hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		hub.logger.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only services control frames; the game is driven over REST.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
