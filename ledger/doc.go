// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the durable store of ideas and votes.

# Ideas

	idea, err := l.InsertIdea(ctx, title, description, author, time.Now())
	ideas, err := l.ListIdeas(ctx) // newest first

# Votes

Vote mutations happen inside RunInTx so a lookup and the write that follows
it commit together:

	err := l.RunInTx(ctx, func(tx ledger.VoteTx) error {
		existing, found, err := tx.FindVote(ctx, ideaID, voter)
		...
	})

InsertVote maps constraint violations to sentinels:

  - ErrDuplicateVote: (idea_id, voter_name) already has a record
  - ErrIdeaNotFound: idea_id does not reference an idea

Both PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite) errors are
recognised. Queries are written with ? placeholders and rewritten to $n for
PostgreSQL.

# Tallies

Counts are never stored. Tally and VoteTx.Tally count vote rows grouped by
direction every time they are called.
*/
package ledger
