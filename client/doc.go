// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the idea board API.

Client wraps the HTTP endpoints and the websocket event stream:

	c, err := client.New("http://127.0.0.1:3318")
	ideas, err := c.FetchIdeas(ctx, "alice")
	resp, err := c.CastVote(ctx, ideaID, "alice", models.DirectionUp)

Non-2xx responses are returned as *APIError carrying the status code and
the server's message.

# Sessions

A Session keeps a clientview.Board in step with the server for one user:

	s := client.NewSession(c, "alice", notifier)
	s.OnDisconnect = func(reason error) { ... }
	go s.Connect(ctx)

	err := s.Vote(ctx, ideaID, models.DirectionDown)

Connect subscribes before fetching the idea list, so an event committed
between the two is either in the fetch or delivered afterwards. Tallies in
VOTE_UPDATE frames are absolute, so seeing one twice is harmless.

Votes are applied optimistically and confirmed or rolled back when the
server answers. Other users' votes arrive only through the stream.
*/
package client
