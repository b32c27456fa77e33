// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reconcile holds the vote transition rules shared by the server and
the client view.

	existing  requested  action   next
	none      up         insert   up
	up        up         retract  none
	up        down       flip     down

Decide returns the one ledger write needed; Predict applies the same rule
to a tally so a client can show the outcome before the server confirms it.
*/
package reconcile
