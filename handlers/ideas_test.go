// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ideaboard/board"
	"github.com/danielhkuo/ideaboard/broadcast"
	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/ledger"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/testutil"
)

func setupIdeasHandler(t *testing.T) (*IdeasHandler, *broadcast.Hub, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	hub := broadcast.NewHub(nil, nil)
	svc := board.NewService(ledger.New(conn, db.DialectSQLite), hub, nil)
	return NewIdeasHandler(svc), hub, conn
}

func voteRequest(ideaID int64, voter, direction string) *http.Request {
	id := strconv.FormatInt(ideaID, 10)
	req := testutil.MakeRequest("POST", "/ideas/"+id+"/votes", models.CastVoteRequest{
		Voter:     voter,
		Direction: direction,
	}, nil)
	req.SetPathValue("id", id)
	return req
}

func TestCreateIdea(t *testing.T) {
	h, hub, conn := setupIdeasHandler(t)
	_, events := hub.Subscribe()

	t.Run("valid idea", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/ideas", models.CreateIdeaRequest{
			Title:       "Friday demos",
			Description: "Show what shipped this week",
		}, nil)
		w := httptest.NewRecorder()

		h.CreateIdea(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.CreateIdeaResponse
		testutil.AssertJSON(t, w, &resp)

		if !resp.Success {
			t.Error("Expected success to be true")
		}
		if resp.Idea == nil || resp.Idea.ID <= 0 {
			t.Fatalf("Expected created idea in response, got %+v", resp.Idea)
		}
		if resp.Idea.Author != models.DefaultAuthor {
			t.Errorf("Expected author %s, got %s", models.DefaultAuthor, resp.Idea.Author)
		}
		if resp.Idea.Upvotes != 0 || resp.Idea.Downvotes != 0 || resp.Idea.ViewerDirection != nil {
			t.Errorf("Expected zero tally and null direction, got %+v", resp.Idea)
		}

		select {
		case evt := <-events:
			if evt.Type != models.EventNewIdea {
				t.Errorf("Expected NEW_IDEA, got %s", evt.Type)
			}
		case <-time.After(time.Second):
			t.Error("Expected NEW_IDEA broadcast")
		}
	})

	testCases := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"missing title", models.CreateIdeaRequest{Description: "d"}, "title is required"},
		{"whitespace title", models.CreateIdeaRequest{Title: "   ", Description: "d"}, "title is required"},
		{"missing description", models.CreateIdeaRequest{Title: "Tea"}, "description is required"},
		{"title too short", models.CreateIdeaRequest{Title: "ab", Description: "Long enough text"}, "title must be at least 3 characters"},
		{"description too short", models.CreateIdeaRequest{Title: "Tea", Description: "short"}, "description must be at least 10 characters"},
		{"title too long", models.CreateIdeaRequest{Title: strings.Repeat("a", 101), Description: "d"}, "title must be at most 100 characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/ideas", tc.body, nil)
			w := httptest.NewRecorder()

			h.CreateIdea(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)
			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Success {
				t.Error("Expected success to be false")
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/ideas", strings.NewReader("{nope"))
		w := httptest.NewRecorder()

		h.CreateIdea(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	if n := testutil.CountRows(t, conn, "idea"); n != 1 {
		t.Errorf("Expected only the valid idea stored, got %d", n)
	}
}

func TestListIdeas(t *testing.T) {
	h, _, conn := setupIdeasHandler(t)

	t.Run("empty board", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ListIdeas(w, httptest.NewRequest("GET", "/ideas", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("Expected empty JSON array, got %s", body)
		}
	})

	now := time.Now()
	first := testutil.CreateTestIdea(t, conn, "First", now.Add(-2*time.Minute))
	second := testutil.CreateTestIdea(t, conn, "Second", now.Add(-time.Minute))
	testutil.CreateTestVote(t, conn, first, "alice", "up")
	testutil.CreateTestVote(t, conn, first, "bob", "up")
	testutil.CreateTestVote(t, conn, second, "alice", "down")

	t.Run("with viewer", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ListIdeas(w, httptest.NewRequest("GET", "/ideas?viewer=alice", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var views []models.IdeaView
		testutil.AssertJSON(t, w, &views)

		if len(views) != 2 {
			t.Fatalf("Expected 2 ideas, got %d", len(views))
		}
		if views[0].ID != second || views[1].ID != first {
			t.Errorf("Expected newest first, got %d then %d", views[0].ID, views[1].ID)
		}
		if views[1].Upvotes != 2 || views[1].Direction() != models.DirectionUp {
			t.Errorf("Unexpected view for first idea: %+v", views[1])
		}
		if views[0].Downvotes != 1 || views[0].Direction() != models.DirectionDown {
			t.Errorf("Unexpected view for second idea: %+v", views[0])
		}
	})

	t.Run("viewer direction is null without a vote", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ListIdeas(w, httptest.NewRequest("GET", "/ideas?viewer=carol", nil))

		if !strings.Contains(w.Body.String(), `"viewer_direction":null`) {
			t.Errorf("Expected null viewer_direction, got %s", w.Body.String())
		}
	})
}

func TestListIdeasStorageError(t *testing.T) {
	h, _, conn := setupIdeasHandler(t)
	conn.Close()

	w := httptest.NewRecorder()
	h.ListIdeas(w, httptest.NewRequest("GET", "/ideas", nil))

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Database error" {
		t.Errorf("Expected generic message, got '%s'", resp.Message)
	}
}

func TestGetIdea(t *testing.T) {
	h, _, conn := setupIdeasHandler(t)
	ideaID := testutil.CreateTestIdea(t, conn, "Single", time.Now())
	testutil.CreateTestVote(t, conn, ideaID, "bob", "down")

	testCases := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{"existing idea", strconv.FormatInt(ideaID, 10), http.StatusOK},
		{"missing idea", "9999", http.StatusNotFound},
		{"non-numeric id", "abc", http.StatusBadRequest},
		{"negative id", "-3", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ideas/"+tc.id+"?viewer=bob", nil)
			req.SetPathValue("id", tc.id)
			w := httptest.NewRecorder()

			h.GetIdea(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}
			var view models.IdeaView
			testutil.AssertJSON(t, w, &view)
			if view.Title != "Single" || view.Downvotes != 1 || view.Direction() != models.DirectionDown {
				t.Errorf("Unexpected view %+v", view)
			}
		})
	}
}

func TestCastVote(t *testing.T) {
	h, _, conn := setupIdeasHandler(t)
	ideaID := testutil.CreateTestIdea(t, conn, "Vote on me", time.Now())

	steps := []struct {
		name      string
		voter     string
		direction string
		message   string
		up, down  int
		want      models.Direction
	}{
		{"first vote", "alice", "up", "Vote recorded", 1, 0, models.DirectionUp},
		{"toggle off", "alice", "up", "Vote removed", 0, 0, models.DirectionNone},
		{"vote down", "alice", "down", "Vote recorded", 0, 1, models.DirectionDown},
		{"flip with legacy spelling", "alice", "upvote", "Vote changed", 1, 0, models.DirectionUp},
		{"second voter", "bob", "down", "Vote recorded", 1, 1, models.DirectionDown},
	}

	for _, step := range steps {
		w := httptest.NewRecorder()
		h.CastVote(w, voteRequest(ideaID, step.voter, step.direction))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.CastVoteResponse
		testutil.AssertJSON(t, w, &resp)

		if !resp.Success || resp.Message != step.message {
			t.Errorf("%s: unexpected response %+v", step.name, resp)
		}
		if resp.IdeaID != ideaID || resp.Upvotes != step.up || resp.Downvotes != step.down {
			t.Errorf("%s: expected %d/%d, got %d/%d", step.name, step.up, step.down, resp.Upvotes, resp.Downvotes)
		}
		got := models.DirectionNone
		if resp.Direction != nil {
			got = *resp.Direction
		}
		if got != step.want {
			t.Errorf("%s: expected direction %q, got %q", step.name, step.want, got)
		}
	}

	if n := testutil.CountVotes(t, conn, ideaID, "alice"); n != 1 {
		t.Errorf("Expected 1 record for alice, got %d", n)
	}
}

func TestCastVoteErrors(t *testing.T) {
	h, _, conn := setupIdeasHandler(t)
	ideaID := testutil.CreateTestIdea(t, conn, "Errors", time.Now())

	testCases := []struct {
		name           string
		req            *http.Request
		expectedStatus int
	}{
		{"empty voter", voteRequest(ideaID, "", "up"), http.StatusBadRequest},
		{"invalid direction", voteRequest(ideaID, "alice", "sideways"), http.StatusBadRequest},
		{"missing direction", voteRequest(ideaID, "alice", ""), http.StatusBadRequest},
		{"unknown idea", voteRequest(4242, "alice", "up"), http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.CastVote(w, tc.req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}

	t.Run("bad path id", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/ideas/zero/votes", models.CastVoteRequest{Voter: "a", Direction: "up"}, nil)
		req.SetPathValue("id", "zero")
		w := httptest.NewRecorder()

		h.CastVote(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/ideas/1/votes", strings.NewReader("not json"))
		req.SetPathValue("id", strconv.FormatInt(ideaID, 10))
		w := httptest.NewRecorder()

		h.CastVote(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	if n := testutil.CountRows(t, conn, "vote"); n != 0 {
		t.Errorf("Expected no votes stored, got %d", n)
	}
}

func TestWriteServiceError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", &board.ValidationError{Field: "voter", Message: "voter name is required"}, http.StatusBadRequest},
		{"not found", &board.NotFoundError{Resource: "idea", ID: 3}, http.StatusNotFound},
		{"conflict", &board.StorageError{Op: "cast vote", Err: board.ErrVoteConflict}, http.StatusConflict},
		{"storage", &board.StorageError{Op: "list ideas", Err: sql.ErrConnDone}, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tc.err)
			testutil.AssertStatus(t, w, tc.expectedStatus)
			if strings.Contains(w.Body.String(), "sql:") {
				t.Errorf("Storage details leaked: %s", w.Body.String())
			}
		})
	}
}
