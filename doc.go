// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ideaboard API server.

ideaboard is a team idea board: anyone can post an idea, everyone can vote
it up or down, and every connected client sees tallies change live.

# Starting the Server

With no configuration the server uses a local SQLite file:

	go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Flags take precedence over environment variables, which may be seeded from
a .env file:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (required for postgres)
  - LOG_LEVEL (--log-level): debug, info, warn or error
  - ENV_FILE (--env-file): .env file to load

# Architecture

  - handlers: HTTP and websocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request logging, JSON helpers
  - board: Vote and idea operations, one transaction per vote
  - reconcile: The up/down/toggle decision table
  - ledger: SQL storage for ideas and votes
  - broadcast: Realtime fan-out hub
  - clientview: Optimistic client-side vote state
  - client: Go API client and live session
  - models: Wire and domain types
  - db: Connection and schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
