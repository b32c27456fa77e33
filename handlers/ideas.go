// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielhkuo/ideaboard/board"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/reconcile"
)

type IdeasHandler struct {
	svc *board.Service
}

func NewIdeasHandler(svc *board.Service) *IdeasHandler {
	return &IdeasHandler{svc: svc}
}

// ListIdeas handles GET /ideas?viewer=name
func (h *IdeasHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListIdeas(r.Context(), r.URL.Query().Get("viewer"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, views)
}

// GetIdea handles GET /ideas/{id}?viewer=name
func (h *IdeasHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	view, err := h.svc.GetIdea(r.Context(), ideaID, r.URL.Query().Get("viewer"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// CreateIdea handles POST /ideas
func (h *IdeasHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIdeaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.svc.CreateIdea(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateIdeaResponse{
		Success: true,
		Message: "Idea submitted successfully",
		Idea:    &view,
	})
}

// CastVote handles POST /ideas/{id}/votes
func (h *IdeasHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := parseIdeaID(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	dir, err := models.ParseDirection(req.Direction)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "direction must be up or down")
		return
	}

	result, err := h.svc.CastVote(r.Context(), ideaID, req.Voter, dir)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		Success:   true,
		Message:   voteMessage(result.Action),
		IdeaID:    result.IdeaID,
		Upvotes:   result.Tally.Upvotes,
		Downvotes: result.Tally.Downvotes,
		Direction: result.Direction.Ptr(),
	})
}

func voteMessage(action reconcile.Action) string {
	switch action {
	case reconcile.ActionFlip:
		return "Vote changed"
	case reconcile.ActionRetract:
		return "Vote removed"
	}
	return "Vote recorded"
}

func parseIdeaID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ideaID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || ideaID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid idea id")
		return 0, false
	}
	return ideaID, true
}

// writeServiceError maps the board error taxonomy onto HTTP. Storage
// details were already logged by the service and are not sent.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		vErr  *board.ValidationError
		nfErr *board.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		middleware.ErrorResponse(w, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &nfErr):
		middleware.ErrorResponse(w, http.StatusNotFound, "Idea not found")
	case errors.Is(err, board.ErrVoteConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Vote conflicted with another vote, please retry")
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
