// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package broadcast fans board events out to every connected viewer.

A single Hub is created at start-up and shared by the board service, which
publishes VOTE_UPDATE and NEW_IDEA events, and the realtime HTTP handler,
which registers one ConnSubscriber per websocket connection.

# Delivery

Publish takes a snapshot of the subscriber set and delivers to it without
holding the hub lock. Delivery never blocks the publisher: every subscriber
owns a bounded queue, and a subscriber whose queue is full (or which is
already closed) is dropped. The failures are returned to the caller as
joined *ChannelError values, so callers can log them and move on.

Guarantees are best-effort and at-most-once per subscriber. A viewer that
misses events recovers by refetching the idea list.

# Wire format

Each websocket text frame is one JSON object:

	{"type":"VOTE_UPDATE","timestamp":"2025-01-02T15:04:05Z","data":{"idea_id":7,"upvotes":2,"downvotes":1}}

NEW_IDEA carries the created idea with a zero tally, and HELLO is sent once
per connection with the subscriber id.

# Metrics

When NewHub is given a prometheus.Registerer it exports:

	ideaboard_broadcast_subscribers              gauge
	ideaboard_broadcast_events_total{type}       counter
	ideaboard_broadcast_delivery_errors_total{type} counter
*/
package broadcast
