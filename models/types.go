package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Direction is a vote's polarity. The zero value means "no vote".
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// DefaultAuthor labels ideas posted without an author
const DefaultAuthor = "Anonymous"

// Valid reports whether d is a castable direction (up or down)
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// ParseDirection accepts "up"/"down" and the older "upvote"/"downvote" spellings
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote":
		return DirectionUp, nil
	case "down", "downvote":
		return DirectionDown, nil
	}
	return DirectionNone, fmt.Errorf("invalid direction %q", s)
}

// Ptr returns nil for DirectionNone so JSON renders null
func (d Direction) Ptr() *Direction {
	if d == DirectionNone {
		return nil
	}
	return &d
}

// Domain types

type Idea struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

type VoteRecord struct {
	ID        int64     `json:"id"`
	IdeaID    int64     `json:"idea_id"`
	VoterName string    `json:"voter_name"`
	Direction Direction `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}

// Tally is always derived from vote records, never stored
type Tally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Add counts one vote in direction d
func (t *Tally) Add(d Direction) {
	switch d {
	case DirectionUp:
		t.Upvotes++
	case DirectionDown:
		t.Downvotes++
	}
}

// IdeaView is an idea as seen by one viewer
type IdeaView struct {
	Idea
	Tally
	ViewerDirection *Direction `json:"viewer_direction"`
	PostedAgo       string     `json:"posted_ago,omitempty"`
}

// Direction returns the viewer's direction, DirectionNone when unset
func (v IdeaView) Direction() Direction {
	if v.ViewerDirection == nil {
		return DirectionNone
	}
	return *v.ViewerDirection
}

// Request types

type CreateIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
}

type CastVoteRequest struct {
	Voter     string `json:"voter"`
	Direction string `json:"direction"`
}

// Response types

type CreateIdeaResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Idea    *IdeaView `json:"idea,omitempty"`
}

type CastVoteResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	IdeaID    int64      `json:"idea_id"`
	Upvotes   int        `json:"upvotes"`
	Downvotes int        `json:"downvotes"`
	Direction *Direction `json:"direction"`
}

// Realtime events

type EventType string

const (
	EventHello      EventType = "HELLO"
	EventVoteUpdate EventType = "VOTE_UPDATE"
	EventNewIdea    EventType = "NEW_IDEA"
)

type VoteUpdate struct {
	IdeaID    int64 `json:"idea_id"`
	Upvotes   int   `json:"upvotes"`
	Downvotes int   `json:"downvotes"`
}

type Hello struct {
	SubscriberID string `json:"subscriber_id"`
}

// EventEnvelope is the wire frame sent over the realtime channel.
// Data is decoded according to Type by the receiver.
type EventEnvelope struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Error response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
