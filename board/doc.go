// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package board implements the idea board's mutations and reads on top of the
vote ledger, and announces every change through a Publisher.

# Voting

CastVote turns a (idea, voter, direction) request into exactly one ledger
write inside one transaction, chosen by reconcile.Decide:

	no record            -> insert
	same direction       -> delete (toggle off)
	opposite direction   -> update in place (flip)

The tally is recounted from the vote records before commit and returned
along with the voter's resulting direction. After commit a VOTE_UPDATE
event carrying the new counts is published.

Mutations for the same idea run under a striped mutex that is held across
the commit and the publish, so VOTE_UPDATE events for one idea leave the
process in commit order. The (idea_id, voter_name) unique index is the
guard across processes: an insert that loses the race to a concurrent first
vote is retried once as an update in a fresh transaction.

# Errors

	*ValidationError   bad input, nothing was stored
	*NotFoundError     the idea does not exist
	*StorageError      the ledger failed; wraps ErrVoteConflict when the
	                   retry also conflicted

Broadcast failures are logged and never fail the mutation. Viewers that
miss an event catch up by refetching the list.

# Reads

ListIdeas scans the vote records once and derives each idea's counts and
the viewer's own direction. Nothing is cached.
*/
package board
