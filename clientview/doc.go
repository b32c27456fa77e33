// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package clientview keeps a client session's optimistic picture of the
// board convergent with the server.
//
// Each idea has a View with states none, up and down plus counts. Begin
// snapshots the state and shows the predicted result of a vote; Confirm
// adopts the server's answer and Rollback restores the snapshot. Pushed
// VOTE_UPDATE events overwrite the counts at any time, including while a
// vote is in flight.
package clientview
