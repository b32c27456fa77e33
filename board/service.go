// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/ideaboard/broadcast"
	"github.com/danielhkuo/ideaboard/ledger"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/reconcile"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 500

	lockStripes = 64
)

// Store is the subset of *ledger.Ledger the service needs
type Store interface {
	RunInTx(ctx context.Context, fn func(ledger.VoteTx) error) error
	InsertIdea(ctx context.Context, title, description, author string, at time.Time) (models.Idea, error)
	GetIdea(ctx context.Context, id int64) (models.Idea, error)
	ListIdeas(ctx context.Context) ([]models.Idea, error)
	VotesByIdea(ctx context.Context, ideaID int64) (map[int64][]models.VoteRecord, error)
}

type Publisher interface {
	Publish(evt broadcast.Event) error
}

// VoteResult is the outcome of one applied vote
type VoteResult struct {
	IdeaID    int64
	Tally     models.Tally
	Direction models.Direction // voter's stance afterwards, none after a retraction
	Action    reconcile.Action
}

type Service struct {
	store Store
	pub   Publisher
	now   func() time.Time

	// Same-idea mutations and their broadcasts run under one stripe
	stripes [lockStripes]sync.Mutex

	votesTotal   *prometheus.CounterVec
	ideasCreated prometheus.Counter
}

// NewService wires the board to its ledger and broadcaster. pub and
// promRegistry may be nil.
func NewService(store Store, pub Publisher, promRegistry prometheus.Registerer) *Service {
	s := &Service{
		store: store,
		pub:   pub,
		now:   time.Now,
		votesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideaboard_votes_total",
			Help: "Applied votes, by ledger action",
		}, []string{"action"}),
		ideasCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ideaboard_ideas_created_total",
			Help: "Ideas posted",
		}),
	}
	if promRegistry != nil {
		promRegistry.MustRegister(s.votesTotal, s.ideasCreated)
	}
	return s
}

func (s *Service) lockFor(ideaID int64) *sync.Mutex {
	return &s.stripes[uint64(ideaID)%lockStripes]
}

// CastVote applies one vote request and broadcasts the new tally.
//
// No record: a record with the requested direction is created.
// Same direction: the record is deleted (toggle off).
// Other direction: the record is flipped in place.
func (s *Service) CastVote(ctx context.Context, ideaID int64, voter string, dir models.Direction) (VoteResult, error) {
	voter = strings.TrimSpace(voter)
	if ideaID <= 0 {
		return VoteResult{}, &ValidationError{Field: "idea_id", Message: "idea id must be a positive integer"}
	}
	if voter == "" {
		return VoteResult{}, &ValidationError{Field: "voter", Message: "voter name is required"}
	}
	if !dir.Valid() {
		return VoteResult{}, &ValidationError{Field: "direction", Message: "direction must be up or down"}
	}

	mu := s.lockFor(ideaID)
	mu.Lock()
	defer mu.Unlock()

	at := s.now()
	var result VoteResult
	err := s.store.RunInTx(ctx, func(tx ledger.VoteTx) error {
		var err error
		result, err = applyVote(ctx, tx, ideaID, voter, dir, at)
		return err
	})
	if errors.Is(err, ledger.ErrDuplicateVote) {
		// A first vote from the same voter committed between our read and
		// insert. Re-read in a fresh transaction and set its direction.
		slog.Debug("vote insert conflicted, retrying as update", "idea_id", ideaID, "voter", voter)
		err = s.store.RunInTx(ctx, func(tx ledger.VoteTx) error {
			var err error
			result, err = forceVote(ctx, tx, ideaID, voter, dir, at)
			return err
		})
		if errors.Is(err, ledger.ErrDuplicateVote) {
			err = fmt.Errorf("%w: %v", ErrVoteConflict, err)
		}
	}
	if err != nil {
		return VoteResult{}, s.voteError(ideaID, voter, err)
	}

	s.votesTotal.WithLabelValues(result.Action.String()).Inc()
	slog.Info("Vote recorded",
		"idea_id", ideaID,
		"voter", voter,
		"action", result.Action,
		"upvotes", result.Tally.Upvotes,
		"downvotes", result.Tally.Downvotes)

	s.publish(broadcast.NewEvent(models.EventVoteUpdate, models.VoteUpdate{
		IdeaID:    ideaID,
		Upvotes:   result.Tally.Upvotes,
		Downvotes: result.Tally.Downvotes,
	}))

	return result, nil
}

func applyVote(ctx context.Context, tx ledger.VoteTx, ideaID int64, voter string, dir models.Direction, at time.Time) (VoteResult, error) {
	existing, found, err := tx.FindVote(ctx, ideaID, voter)
	if err != nil {
		return VoteResult{}, err
	}

	current := models.DirectionNone
	if found {
		current = existing.Direction
	}

	action := reconcile.Decide(current, dir)
	switch action {
	case reconcile.ActionInsert:
		_, err = tx.InsertVote(ctx, ideaID, voter, dir, at)
	case reconcile.ActionFlip:
		err = tx.UpdateDirection(ctx, existing.ID, dir)
	case reconcile.ActionRetract:
		err = tx.DeleteVote(ctx, existing.ID)
	}
	if err != nil {
		return VoteResult{}, err
	}

	return finish(ctx, tx, ideaID, reconcile.Next(current, dir), action)
}

// forceVote leaves the voter with exactly the requested direction.
// It is only used after an insert lost a race, so it never retracts.
func forceVote(ctx context.Context, tx ledger.VoteTx, ideaID int64, voter string, dir models.Direction, at time.Time) (VoteResult, error) {
	existing, found, err := tx.FindVote(ctx, ideaID, voter)
	if err != nil {
		return VoteResult{}, err
	}

	action := reconcile.ActionInsert
	switch {
	case !found:
		_, err = tx.InsertVote(ctx, ideaID, voter, dir, at)
	case existing.Direction != dir:
		action = reconcile.ActionFlip
		err = tx.UpdateDirection(ctx, existing.ID, dir)
	}
	if err != nil {
		return VoteResult{}, err
	}

	return finish(ctx, tx, ideaID, dir, action)
}

func finish(ctx context.Context, tx ledger.VoteTx, ideaID int64, dir models.Direction, action reconcile.Action) (VoteResult, error) {
	tally, err := tx.Tally(ctx, ideaID)
	if err != nil {
		return VoteResult{}, err
	}
	return VoteResult{
		IdeaID:    ideaID,
		Tally:     tally,
		Direction: dir,
		Action:    action,
	}, nil
}

func (s *Service) voteError(ideaID int64, voter string, err error) error {
	if errors.Is(err, ledger.ErrIdeaNotFound) {
		return &NotFoundError{Resource: "idea", ID: ideaID}
	}
	slog.Error("Failed to apply vote", "idea_id", ideaID, "voter", voter, "error", err)
	return &StorageError{Op: "cast vote", Err: err}
}

// CreateIdea validates and stores a new idea, then announces it with a zero
// tally
func (s *Service) CreateIdea(ctx context.Context, req models.CreateIdeaRequest) (models.IdeaView, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = models.DefaultAuthor
	}

	if title == "" {
		return models.IdeaView{}, &ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		return models.IdeaView{}, &ValidationError{Field: "title", Message: fmt.Sprintf("title must be at least %d characters", MinTitleLength)}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return models.IdeaView{}, &ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}
	}
	if description == "" {
		return models.IdeaView{}, &ValidationError{Field: "description", Message: "description is required"}
	}
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return models.IdeaView{}, &ValidationError{Field: "description", Message: fmt.Sprintf("description must be at least %d characters", MinDescriptionLength)}
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return models.IdeaView{}, &ValidationError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)}
	}

	idea, err := s.store.InsertIdea(ctx, title, description, author, s.now())
	if err != nil {
		slog.Error("Failed to create idea", "error", err)
		return models.IdeaView{}, &StorageError{Op: "create idea", Err: err}
	}

	s.ideasCreated.Inc()
	slog.Info("Idea created", "idea_id", idea.ID, "author", idea.Author)

	view := s.view(idea, nil, "")
	s.publish(broadcast.NewEvent(models.EventNewIdea, view))

	return view, nil
}

// ListIdeas returns every idea newest first with its tally and the viewer's
// own direction. An empty viewer gets null directions.
func (s *Service) ListIdeas(ctx context.Context, viewer string) ([]models.IdeaView, error) {
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		slog.Error("Failed to list ideas", "error", err)
		return nil, &StorageError{Op: "list ideas", Err: err}
	}

	votes, err := s.store.VotesByIdea(ctx, 0)
	if err != nil {
		slog.Error("Failed to load votes", "error", err)
		return nil, &StorageError{Op: "list ideas", Err: err}
	}

	viewer = strings.TrimSpace(viewer)
	views := make([]models.IdeaView, 0, len(ideas))
	for _, idea := range ideas {
		views = append(views, s.view(idea, votes[idea.ID], viewer))
	}
	return views, nil
}

func (s *Service) GetIdea(ctx context.Context, id int64, viewer string) (models.IdeaView, error) {
	if id <= 0 {
		return models.IdeaView{}, &ValidationError{Field: "idea_id", Message: "idea id must be a positive integer"}
	}

	idea, err := s.store.GetIdea(ctx, id)
	if errors.Is(err, ledger.ErrIdeaNotFound) {
		return models.IdeaView{}, &NotFoundError{Resource: "idea", ID: id}
	}
	if err != nil {
		slog.Error("Failed to get idea", "idea_id", id, "error", err)
		return models.IdeaView{}, &StorageError{Op: "get idea", Err: err}
	}

	votes, err := s.store.VotesByIdea(ctx, id)
	if err != nil {
		slog.Error("Failed to load votes", "idea_id", id, "error", err)
		return models.IdeaView{}, &StorageError{Op: "get idea", Err: err}
	}

	return s.view(idea, votes[id], strings.TrimSpace(viewer)), nil
}

func (s *Service) view(idea models.Idea, votes []models.VoteRecord, viewer string) models.IdeaView {
	v := models.IdeaView{
		Idea:      idea,
		PostedAgo: humanize.RelTime(idea.CreatedAt, s.now(), "ago", "from now"),
	}
	for _, vote := range votes {
		v.Tally.Add(vote.Direction)
		if viewer != "" && vote.VoterName == viewer {
			v.ViewerDirection = vote.Direction.Ptr()
		}
	}
	return v
}

func (s *Service) publish(evt broadcast.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(evt); err != nil {
		slog.Warn("Broadcast delivery failed", "type", evt.Type, "error", err)
	}
}
