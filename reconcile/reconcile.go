// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import "github.com/danielhkuo/ideaboard/models"

// Action is the single ledger write a vote request turns into
type Action int

const (
	ActionInsert  Action = iota + 1 // no record yet
	ActionFlip                      // record exists with the other direction
	ActionRetract                   // record exists with the same direction
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionFlip:
		return "flip"
	case ActionRetract:
		return "retract"
	}
	return "unknown"
}

// Decide picks the write for a voter whose current stance is existing
// (DirectionNone when they have no record) and who asks for requested.
func Decide(existing, requested models.Direction) Action {
	switch existing {
	case models.DirectionNone:
		return ActionInsert
	case requested:
		return ActionRetract
	default:
		return ActionFlip
	}
}

// Next is the voter's stance after the request is applied
func Next(existing, requested models.Direction) models.Direction {
	if Decide(existing, requested) == ActionRetract {
		return models.DirectionNone
	}
	return requested
}

// Predict applies the same transition to a tally the caller already holds:
// the old direction's contribution is removed and the new one added.
// Counts never go below zero.
func Predict(tally models.Tally, current, requested models.Direction) (models.Tally, models.Direction) {
	next := Next(current, requested)

	remove(&tally, current)
	tally.Add(next)

	return tally, next
}

func remove(t *models.Tally, d models.Direction) {
	switch d {
	case models.DirectionUp:
		if t.Upvotes > 0 {
			t.Upvotes--
		}
	case models.DirectionDown:
		if t.Downvotes > 0 {
			t.Downvotes--
		}
	}
}
