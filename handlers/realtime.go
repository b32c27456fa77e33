// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/danielhkuo/ideaboard/broadcast"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
)

type RealtimeHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *broadcast.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same policy as the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Events handles GET /events. The connection is upgraded to a websocket and
// receives every published board event until either side closes it.
func (h *RealtimeHandler) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Warn("websocket upgrade failed", "error", err, "remote", middleware.GetClientIP(r))
		return
	}

	sessionID := uuid.NewString()
	sub := broadcast.NewConnSubscriber(conn)

	// Queue HELLO before registering so it is the first frame
	sub.Deliver(broadcast.NewEvent(models.EventHello, models.Hello{SubscriberID: sessionID}))
	id := h.hub.Register(sub)
	defer h.hub.Unsubscribe(id)

	slog.Info("Realtime subscriber connected",
		"subscriber", sessionID,
		"remote", middleware.GetClientIP(r),
		"subscribers", h.hub.Len())

	err = sub.Run(r.Context())
	if err != nil {
		slog.Info("Realtime subscriber disconnected", "subscriber", sessionID, "reason", err)
		return
	}
	slog.Info("Realtime subscriber disconnected", "subscriber", sessionID)
}
