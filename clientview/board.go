// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clientview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/danielhkuo/ideaboard/models"
)

var ErrUnknownIdea = errors.New("idea is not on the board")

type NotificationKind int

const (
	NotifySuccess NotificationKind = iota
	NotifyError
)

// Notification is a transient message for the user
type Notification struct {
	Kind    NotificationKind
	Title   string
	Message string
}

type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// CastFunc sends one vote to the server
type CastFunc func(ctx context.Context, ideaID int64, dir models.Direction) (models.CastVoteResponse, error)

type entry struct {
	idea      models.Idea
	postedAgo string
	view      *View
}

// Board is a session's ordered list of ideas, newest first
type Board struct {
	mu       sync.RWMutex
	order    []int64
	entries  map[int64]*entry
	notifier Notifier
}

func NewBoard(notifier Notifier) *Board {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Board{
		entries:  make(map[int64]*entry),
		notifier: notifier,
	}
}

// Load replaces the board with a freshly fetched list
func (b *Board) Load(ideas []models.IdeaView) {
	order := make([]int64, 0, len(ideas))
	entries := make(map[int64]*entry, len(ideas))
	for _, iv := range ideas {
		if _, dup := entries[iv.ID]; dup {
			continue
		}
		order = append(order, iv.ID)
		entries[iv.ID] = &entry{
			idea:      iv.Idea,
			postedAgo: iv.PostedAgo,
			view:      NewView(iv.Tally, iv.Direction()),
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = order
	b.entries = entries
}

// View returns the live view for an idea
func (b *Board) View(ideaID int64) (*View, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[ideaID]
	if !ok {
		return nil, false
	}
	return e.view, true
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Views renders the board as the user currently sees it
func (b *Board) Views() []models.IdeaView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.IdeaView, 0, len(b.order))
	for _, id := range b.order {
		e := b.entries[id]
		st := e.view.State()
		out = append(out, models.IdeaView{
			Idea:            e.idea,
			Tally:           st.Tally,
			ViewerDirection: st.Direction.Ptr(),
			PostedAgo:       e.postedAgo,
		})
	}
	return out
}

// HandleEvent applies one pushed event. Events for ideas not on the board
// and unknown event types are ignored.
func (b *Board) HandleEvent(env models.EventEnvelope) error {
	switch env.Type {
	case models.EventVoteUpdate:
		var update models.VoteUpdate
		if err := json.Unmarshal(env.Data, &update); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if view, ok := b.View(update.IdeaID); ok {
			view.ApplyTally(models.Tally{Upvotes: update.Upvotes, Downvotes: update.Downvotes})
		}

	case models.EventNewIdea:
		var iv models.IdeaView
		if err := json.Unmarshal(env.Data, &iv); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		b.prepend(iv)
	}
	return nil
}

func (b *Board) prepend(iv models.IdeaView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[iv.ID]; ok {
		return
	}
	b.entries[iv.ID] = &entry{
		idea:      iv.Idea,
		postedAgo: iv.PostedAgo,
		view:      NewView(iv.Tally, models.DirectionNone),
	}
	b.order = append([]int64{iv.ID}, b.order...)
}

// Vote predicts the outcome locally, sends it with cast, and then confirms
// or rolls back. The user is notified either way. A second vote on the same
// idea while one is in flight returns ErrVoteInFlight without notifying.
func (b *Board) Vote(ctx context.Context, ideaID int64, dir models.Direction, cast CastFunc) error {
	view, ok := b.View(ideaID)
	if !ok {
		return ErrUnknownIdea
	}
	if _, err := view.Begin(dir); err != nil {
		return err
	}

	resp, err := cast(ctx, ideaID, dir)
	if err != nil {
		view.Rollback()
		b.notifier.Notify(Notification{
			Kind:    NotifyError,
			Title:   "Vote Error",
			Message: err.Error(),
		})
		return err
	}

	confirmed := models.DirectionNone
	if resp.Direction != nil {
		confirmed = *resp.Direction
	}
	view.Confirm(models.Tally{Upvotes: resp.Upvotes, Downvotes: resp.Downvotes}, confirmed)

	msg := resp.Message
	if msg == "" {
		msg = "Vote recorded"
	}
	b.notifier.Notify(Notification{
		Kind:    NotifySuccess,
		Title:   "Vote Cast",
		Message: msg,
	})
	return nil
}
