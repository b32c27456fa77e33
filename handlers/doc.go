// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the idea board API.

# Handler Types

  - IdeasHandler: posting ideas, listing them and casting votes
  - RealtimeHandler: the websocket event stream

Handlers are created with their collaborators injected:

	ideasHandler := handlers.NewIdeasHandler(svc)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

# Ideas

	GET  /ideas?viewer=name      → ListIdeas (newest first)
	GET  /ideas/{id}?viewer=name → GetIdea
	POST /ideas                  → CreateIdea (201)
	POST /ideas/{id}/votes       → CastVote

viewer is the self-asserted display name whose own vote direction is
returned as viewer_direction (null when they have not voted).

A vote body is {"voter":"alice","direction":"up"}. Repeating the current
direction removes the vote and the opposite direction flips it. The
response carries the new counts and the voter's resulting direction.

# Errors

Board errors map onto status codes:

	ValidationError → 400 with the validation message
	NotFoundError   → 404
	vote conflict   → 409
	anything else   → 500 "Database error"

# Realtime

	GET /events → websocket

The first frame is HELLO with the subscriber id. VOTE_UPDATE and NEW_IDEA
frames follow as the board changes.
*/
package handlers
