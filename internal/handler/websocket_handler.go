package handler

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	ws "storefront-client/internal/websocket"

	"github.com/gorilla/websocket"
)

// WebSocketHandler streams cart snapshots to UI clients
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. Only requests from
// allowedOrigins, or without an Origin header, are upgraded; "*" allows any.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleConnection handles WebSocket upgrade and connection
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	// The connection outlives the request
	client := ws.NewClient(context.WithoutCancel(r.Context()), h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
