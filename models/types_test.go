package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"up", DirectionUp, false},
		{"down", DirectionDown, false},
		{"upvote", DirectionUp, false},
		{"downvote", DirectionDown, false},
		{" UP ", DirectionUp, false},
		{"", DirectionNone, true},
		{"sideways", DirectionNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIdeaViewJSON(t *testing.T) {
	view := IdeaView{
		Idea:  Idea{ID: 7, Title: "Standups at 10", Description: "later please", Author: DefaultAuthor},
		Tally: Tally{Upvotes: 2, Downvotes: 1},
	}

	body, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(body)

	// Embedded structs are flattened
	for _, want := range []string{`"id":7`, `"upvotes":2`, `"downvotes":1`, `"viewer_direction":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}

	view.ViewerDirection = DirectionDown.Ptr()
	body, _ = json.Marshal(view)
	if !strings.Contains(string(body), `"viewer_direction":"down"`) {
		t.Errorf("expected viewer_direction down, got %s", body)
	}
	if view.Direction() != DirectionDown {
		t.Errorf("Direction() = %q, want down", view.Direction())
	}
}

func TestTallyAdd(t *testing.T) {
	var tally Tally
	tally.Add(DirectionUp)
	tally.Add(DirectionUp)
	tally.Add(DirectionDown)
	tally.Add(DirectionNone)

	if tally.Upvotes != 2 || tally.Downvotes != 1 {
		t.Errorf("unexpected tally %+v", tally)
	}
}
