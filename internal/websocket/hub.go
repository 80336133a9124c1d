package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
)

// CartMessage is the snapshot pushed to clients after every cart change.
type CartMessage struct {
	Type  string            `json:"type"`
	Items []domain.CartLine `json:"items"`
	Count int               `json:"count"`
}

// SessionMessage announces a login state change. The token itself is never
// sent to clients.
type SessionMessage struct {
	Type       string `json:"type"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	UserID     string `json:"userId,omitempty"`
}

// EventMessage relays a storefront event to clients.
type EventMessage struct {
	Type  string       `json:"type"`
	Event domain.Event `json:"event"`
}

const (
	retainSession = "session"
	retainCart    = "cart"
)

// replayOrder is the order retained snapshots are sent to a new client.
var replayOrder = []string{retainSession, retainCart}

type outbound struct {
	data []byte
	// retain names the snapshot slot this message replaces; empty messages
	// are not replayed
	retain string
}

// Hub maintains active clients and broadcasts messages
type Hub struct {
	clients map[*Client]bool

	// Latest snapshot per slot, replayed on register
	retained map[string][]byte

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	// Shutdown signal
	done chan struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		retained:   make(map[string][]byte),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			observability.WebSocketConnectionsActive.Inc()
			slog.Info("client registered", slog.String("client_id", client.id))
			for _, slot := range replayOrder {
				if data, ok := h.retained[slot]; ok {
					h.send(client, data)
				}
			}

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			if message.retain != "" {
				h.retained[message.retain] = message.data
			}
			for client := range h.clients {
				h.send(client, message.data)
			}
		}
	}
}

// send queues data for client, dropping the client when its buffer is full
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.send <- data:
		observability.WebSocketMessagesSent.Inc()
	default:
		h.closeClientSend(client)
		delete(h.clients, client)
		observability.WebSocketConnectionsActive.Dec()
	}
}

// unregisterClient safely removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.closeClientSend(client)
		observability.WebSocketConnectionsActive.Dec()
		slog.Info("client unregistered", slog.String("client_id", client.id))
	}
}

// closeClientSend safely closes a client's send channel
func (h *Hub) closeClientSend(client *Client) {
	client.sendOnce.Do(func() { close(client.send) })
}

// shutdown performs graceful cleanup of all connections
func (h *Hub) shutdown() {
	close(h.done)

	for client := range h.clients {
		h.closeClientSend(client)
		observability.WebSocketConnectionsActive.Dec()
	}
	h.clients = make(map[*Client]bool)

	slog.Info("hub shutdown complete")
}

// Broadcast sends a message to every client. It is a no-op once the hub
// has stopped.
func (h *Hub) Broadcast(message []byte) {
	h.enqueue(outbound{data: message})
}

// BroadcastCart pushes a cart snapshot to every client. The snapshot is
// also replayed to clients that connect later.
func (h *Hub) BroadcastCart(lines []domain.CartLine) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(CartMessage{Type: "cart", Items: lines, Count: len(lines)})
	if err != nil {
		slog.Error("failed to marshal cart snapshot", slog.String("error", err.Error()))
		return
	}
	h.enqueue(outbound{data: data, retain: retainCart})
}

// BroadcastSession pushes the login state to every client and replays it to
// clients that connect later.
func (h *Hub) BroadcastSession(session domain.Session) {
	data, err := json.Marshal(SessionMessage{
		Type:       "session",
		IsLoggedIn: session.IsLoggedIn,
		UserID:     session.UserID,
	})
	if err != nil {
		slog.Error("failed to marshal session snapshot", slog.String("error", err.Error()))
		return
	}
	h.enqueue(outbound{data: data, retain: retainSession})
}

// BroadcastEvent relays a storefront event to every client.
func (h *Hub) BroadcastEvent(event domain.Event) {
	data, err := json.Marshal(EventMessage{Type: "event", Event: event})
	if err != nil {
		slog.Error("failed to marshal event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()))
		return
	}
	h.Broadcast(data)
}

func (h *Hub) enqueue(m outbound) {
	select {
	case h.broadcast <- m:
	case <-h.done:
	}
}

// Register registers a client with the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		h.closeClientSend(client)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
