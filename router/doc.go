// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the idea board API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, hub, prometheus.DefaultGatherer)

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics
	GET /        - API banner

Ideas:

	GET  /ideas            - List ideas, newest first
	POST /ideas            - Post an idea
	GET  /ideas/{id}       - One idea
	POST /ideas/{id}/votes - Cast, flip or withdraw a vote

Realtime:

	GET /events - Websocket stream of HELLO, VOTE_UPDATE and NEW_IDEA frames

# Handler Initialization

The router creates handler instances with dependency injection:

	ideasHandler := handlers.NewIdeasHandler(svc)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

The board service and the hub are created once in main and shared.
*/
package router
