// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, event and domain types for the API.

# Domain Types

  - Idea: immutable once created (id, title, description, author, created_at)
  - VoteRecord: one voter's stance on one idea
  - Tally: upvote/downvote counts, derived from vote records on every read
  - IdeaView: Idea + Tally + the viewer's own direction

# Directions

	DirectionNone = ""
	DirectionUp   = "up"
	DirectionDown = "down"

ParseDirection also accepts "upvote" and "downvote".

# Request Types

  - CreateIdeaRequest: title, description, author (optional)
  - CastVoteRequest: voter, direction

# Response Types

  - CreateIdeaResponse: success, message, idea
  - CastVoteResponse: success, message, idea_id, upvotes, downvotes, direction
  - ErrorResponse: success (always false), error, message

# Realtime Events

Frames on the realtime channel are EventEnvelope values:

	{"type": "VOTE_UPDATE", "timestamp": "...", "data": {"idea_id": 1, "upvotes": 2, "downvotes": 0}}
	{"type": "NEW_IDEA", "timestamp": "...", "data": {IdeaView with zero counts}}
	{"type": "HELLO", "timestamp": "...", "data": {"subscriber_id": "..."}}
*/
package models
