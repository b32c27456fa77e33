// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/testutil"
)

func readEnvelope(t *testing.T, conn *websocket.Conn) models.EventEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env models.EventEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return env
}

func TestRealtimeEvents(t *testing.T) {
	ideas, hub, conn := setupIdeasHandler(t)
	realtime := NewRealtimeHandler(hub)
	ideaID := testutil.CreateTestIdea(t, conn, "Live", time.Now())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", realtime.Events)
	mux.HandleFunc("POST /ideas/{id}/votes", ideas.CastVote)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer ws.Close()

	hello := readEnvelope(t, ws)
	if hello.Type != models.EventHello {
		t.Fatalf("Expected HELLO first, got %s", hello.Type)
	}
	var h models.Hello
	if err := json.Unmarshal(hello.Data, &h); err != nil || h.SubscriberID == "" {
		t.Errorf("Expected subscriber id in HELLO, got %s", hello.Data)
	}

	// The hub registers right after HELLO is queued
	deadline := time.Now().Add(time.Second)
	for hub.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	body := `{"voter":"alice","direction":"up"}`
	resp, err := http.Post(srv.URL+"/ideas/"+idString(ideaID)+"/votes", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Vote request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	env := readEnvelope(t, ws)
	if env.Type != models.EventVoteUpdate {
		t.Fatalf("Expected VOTE_UPDATE, got %s", env.Type)
	}
	var update models.VoteUpdate
	if err := json.Unmarshal(env.Data, &update); err != nil {
		t.Fatalf("Failed to decode update: %v", err)
	}
	if update != (models.VoteUpdate{IdeaID: ideaID, Upvotes: 1}) {
		t.Errorf("Unexpected update %+v", update)
	}

	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	deadline = time.Now().Add(2 * time.Second)
	for hub.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Len() != 0 {
		t.Errorf("Expected subscriber removed after close, %d remain", hub.Len())
	}
}

func TestRealtimeRejectsPlainHTTP(t *testing.T) {
	_, hub, _ := setupIdeasHandler(t)
	realtime := NewRealtimeHandler(hub)

	w := httptest.NewRecorder()
	realtime.Events(w, httptest.NewRequest("GET", "/events", nil))

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if hub.Len() != 0 {
		t.Errorf("Expected no subscribers, got %d", hub.Len())
	}
}

func idString(n int64) string {
	return strconv.FormatInt(n, 10)
}
