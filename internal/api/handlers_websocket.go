// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/websocket"
)

// WebSocketHandler upgrades HTTP connections and attaches them to the hub.
type WebSocketHandler struct {
	hub      *websocket.Hub
	store    SensorStore
	upgrader gorillaws.Upgrader
}

// NewWebSocketHandler creates the upgrade handler. allowedOrigins mirrors the
// CORS configuration; an empty list rejects cross-origin upgrades.
func NewWebSocketHandler(hub *websocket.Hub, store SensorStore, allowedOrigins []string) *WebSocketHandler {
	originSet := make(map[string]bool, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		originSet[origin] = true
	}

	return &WebSocketHandler{
		hub:   hub,
		store: store,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Same-origin or non-browser client.
					return true
				}
				return wildcard || originSet[origin]
			},
		},
	}
}

// ServeHTTP upgrades the connection, registers the client with the hub and
// queues the current sensor snapshot as the first message.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)

	// Queue the snapshot before the client is registered. Once registered, a
	// disconnecting peer can drive Unregister and close the send channel, so
	// nothing may queue to it from here on.
	snapshot := h.store.Snapshot()
	client.Send(websocket.Message{
		Type: websocket.MessageTypeSnapshot,
		Data: &snapshot,
	})

	h.hub.Register <- client
	client.Start()
}
