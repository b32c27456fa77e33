// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clientview

import (
	"errors"
	"sync"

	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/reconcile"
)

var ErrVoteInFlight = errors.New("a vote on this idea is already in flight")

// State is what a viewer sees for one idea
type State struct {
	Tally     models.Tally
	Direction models.Direction
}

// View is one session's optimistic state for one idea.
// While a vote is in flight the state before it is kept aside so a failure
// can restore it wholesale.
type View struct {
	mu    sync.Mutex
	state State
	saved *State
	// pushed is set when a server tally arrives while a vote is in flight
	pushed bool
}

func NewView(tally models.Tally, dir models.Direction) *View {
	return &View{state: State{Tally: tally, Direction: dir}}
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) InFlight() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.saved != nil
}

// Begin applies the predicted outcome of voting requested and returns it
func (v *View) Begin(requested models.Direction) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.saved != nil {
		return v.state, ErrVoteInFlight
	}

	snapshot := v.state
	v.saved = &snapshot
	v.pushed = false
	v.state.Tally, v.state.Direction = reconcile.Predict(v.state.Tally, v.state.Direction, requested)
	return v.state, nil
}

// Confirm adopts the server's answer for the vote in flight. The response
// tally is as of this viewer's own commit, so a push that arrived since
// Begin is newer and its counts are kept; only the direction is taken.
func (v *View) Confirm(tally models.Tally, dir models.Direction) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.pushed {
		v.state.Tally = tally
	}
	v.state.Direction = dir
	v.saved = nil
	v.pushed = false
}

// Rollback restores the state saved by Begin. Pushes received since Begin
// are discarded with it. Without a vote in flight it does nothing.
func (v *View) Rollback() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.saved == nil {
		return
	}
	v.state = *v.saved
	v.saved = nil
	v.pushed = false
}

// ApplyTally overwrites the displayed counts with a pushed tally. The
// viewer's own direction is left alone.
func (v *View) ApplyTally(tally models.Tally) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Tally = tally
	if v.saved != nil {
		v.pushed = true
	}
}
