// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/danielhkuo/ideaboard/clientview"
	"github.com/danielhkuo/ideaboard/models"
)

// ErrNoUsername is returned when voting before a username is set
var ErrNoUsername = errors.New("username is required to vote")

// Session is one user's live view of the board
type Session struct {
	ID    uuid.UUID
	Board *clientview.Board

	// OnConnect receives the subscriber id from the server's HELLO frame
	OnConnect func(subscriberID string)
	// OnDisconnect receives nil for a normal close or cancellation
	OnDisconnect func(reason error)
	// OnError receives frames that could not be applied; the stream continues
	OnError func(err error)

	client   *Client
	notifier clientview.Notifier

	mu       sync.RWMutex
	username string
}

// NewSession creates a session. username may be empty until SetUsername.
func NewSession(c *Client, username string, notifier clientview.Notifier) *Session {
	if notifier == nil {
		notifier = clientview.NotifierFunc(func(clientview.Notification) {})
	}
	return &Session{
		ID:       uuid.New(),
		Board:    clientview.NewBoard(notifier),
		client:   c,
		notifier: notifier,
		username: strings.TrimSpace(username),
	}
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) SetUsername(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = strings.TrimSpace(name)
}

// Connect subscribes, loads the full idea list, and then applies pushed
// events until ctx ends or the connection drops. Subscribing before the
// fetch means nothing committed after the fetch can be missed.
func (s *Session) Connect(ctx context.Context) error {
	stream, err := s.client.Dial(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	ideas, err := s.client.FetchIdeas(ctx, s.Username())
	if err != nil {
		return err
	}
	s.Board.Load(ideas)
	slog.Debug("Session loaded", "session_id", s.ID, "ideas", len(ideas))

	err = stream.pump(ctx, s.apply)
	slog.Debug("Session disconnected", "session_id", s.ID, "error", err)
	if s.OnDisconnect != nil {
		s.OnDisconnect(err)
	}
	return err
}

func (s *Session) apply(env models.EventEnvelope) error {
	if env.Type == models.EventHello {
		var hello models.Hello
		if err := json.Unmarshal(env.Data, &hello); err != nil {
			s.reportError(err)
			return nil
		}
		if s.OnConnect != nil {
			s.OnConnect(hello.SubscriberID)
		}
		return nil
	}

	if err := s.Board.HandleEvent(env); err != nil {
		s.reportError(err)
	}
	return nil
}

func (s *Session) reportError(err error) {
	slog.Warn("Failed to apply event", "session_id", s.ID, "error", err)
	if s.OnError != nil {
		s.OnError(err)
	}
}

// Vote casts a vote as the session's user with an optimistic local update
func (s *Session) Vote(ctx context.Context, ideaID int64, dir models.Direction) error {
	username := s.Username()
	if username == "" {
		s.notifier.Notify(clientview.Notification{
			Kind:    clientview.NotifyError,
			Title:   "Login Required",
			Message: "Please enter a username to vote.",
		})
		return ErrNoUsername
	}

	return s.Board.Vote(ctx, ideaID, dir, func(ctx context.Context, ideaID int64, dir models.Direction) (models.CastVoteResponse, error) {
		return s.client.CastVote(ctx, ideaID, username, dir)
	})
}

// CreateIdea posts an idea authored by the session's user. The board picks
// it up from the NEW_IDEA push.
func (s *Session) CreateIdea(ctx context.Context, title, description string) (models.IdeaView, error) {
	idea, err := s.client.CreateIdea(ctx, models.CreateIdeaRequest{
		Title:       title,
		Description: description,
		Author:      s.Username(),
	})
	if err != nil {
		s.notifier.Notify(clientview.Notification{
			Kind:    clientview.NotifyError,
			Title:   "Submission Error",
			Message: err.Error(),
		})
		return models.IdeaView{}, err
	}

	s.notifier.Notify(clientview.Notification{
		Kind:    clientview.NotifySuccess,
		Title:   "Idea Submitted",
		Message: idea.Title,
	})
	return idea, nil
}
