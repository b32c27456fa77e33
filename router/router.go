// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/ideaboard/board"
	"github.com/danielhkuo/ideaboard/broadcast"
	"github.com/danielhkuo/ideaboard/handlers"
	"github.com/danielhkuo/ideaboard/middleware"
)

// NewRouter registers every endpoint. gatherer backs /metrics; pass
// prometheus.DefaultGatherer in production.
func NewRouter(svc *board.Service, hub *broadcast.Hub, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	ideasHandler := handlers.NewIdeasHandler(svc)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Ideas and votes
	mux.HandleFunc("GET /ideas", middleware.WithLogging(ideasHandler.ListIdeas))
	mux.HandleFunc("POST /ideas", middleware.WithLogging(ideasHandler.CreateIdea))
	mux.HandleFunc("GET /ideas/{id}", middleware.WithLogging(ideasHandler.GetIdea))
	mux.HandleFunc("POST /ideas/{id}/votes", middleware.WithLogging(ideasHandler.CastVote))

	// Realtime updates
	mux.HandleFunc("GET /events", middleware.WithLogging(realtimeHandler.Events))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ideaboard API v1"))
	})

	return mux
}
