// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/models"
)

var (
	ErrIdeaNotFound  = errors.New("idea not found")
	ErrDuplicateVote = errors.New("vote already recorded for this voter")
)

// VoteTx is the read-modify-write surface available inside one transaction
type VoteTx interface {
	FindVote(ctx context.Context, ideaID int64, voter string) (models.VoteRecord, bool, error)
	InsertVote(ctx context.Context, ideaID int64, voter string, dir models.Direction, at time.Time) (int64, error)
	UpdateDirection(ctx context.Context, voteID int64, dir models.Direction) error
	DeleteVote(ctx context.Context, voteID int64) error
	Tally(ctx context.Context, ideaID int64) (models.Tally, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ledger is the durable store of ideas and votes
type Ledger struct {
	db      *sql.DB
	dialect db.Dialect
}

func New(conn *sql.DB, dialect db.Dialect) *Ledger {
	return &Ledger{db: conn, dialect: dialect}
}

// RunInTx runs fn inside a transaction, committing only when fn returns nil
func (l *Ledger) RunInTx(ctx context.Context, fn func(VoteTx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&voteTx{q: tx, dialect: l.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertIdea stores a new idea and returns it with its assigned id
func (l *Ledger) InsertIdea(ctx context.Context, title, description, author string, at time.Time) (models.Idea, error) {
	// Postgres keeps microseconds, keep the returned value identical to a re-read
	at = at.UTC().Truncate(time.Microsecond)

	idea := models.Idea{
		Title:       title,
		Description: description,
		Author:      author,
		CreatedAt:   at,
	}
	err := l.db.QueryRowContext(ctx, rebind(l.dialect, `
		INSERT INTO idea (title, description, author, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), title, description, author, at).Scan(&idea.ID)
	if err != nil {
		return models.Idea{}, fmt.Errorf("failed to insert idea: %w", err)
	}

	return idea, nil
}

// GetIdea returns ErrIdeaNotFound when id does not exist
func (l *Ledger) GetIdea(ctx context.Context, id int64) (models.Idea, error) {
	var idea models.Idea
	err := l.db.QueryRowContext(ctx, rebind(l.dialect, `
		SELECT id, title, description, author, created_at
		FROM idea WHERE id = ?
	`), id).Scan(&idea.ID, &idea.Title, &idea.Description, &idea.Author, &idea.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Idea{}, ErrIdeaNotFound
	}
	if err != nil {
		return models.Idea{}, fmt.Errorf("failed to query idea: %w", err)
	}
	return idea, nil
}

// ListIdeas returns all ideas newest first, ties broken by id
func (l *Ledger) ListIdeas(ctx context.Context) ([]models.Idea, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, description, author, created_at
		FROM idea
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()

	ideas := []models.Idea{}
	for rows.Next() {
		var idea models.Idea
		if err := rows.Scan(&idea.ID, &idea.Title, &idea.Description, &idea.Author, &idea.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return ideas, nil
}

// VotesByIdea returns every vote record grouped by idea id.
// Pass ideaID > 0 to restrict the scan to one idea.
func (l *Ledger) VotesByIdea(ctx context.Context, ideaID int64) (map[int64][]models.VoteRecord, error) {
	query := `SELECT id, idea_id, voter_name, direction, created_at FROM vote`
	var args []any
	if ideaID > 0 {
		query += ` WHERE idea_id = ?`
		args = append(args, ideaID)
	}
	query += ` ORDER BY idea_id, id`

	rows, err := l.db.QueryContext(ctx, rebind(l.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[int64][]models.VoteRecord)
	for rows.Next() {
		var v models.VoteRecord
		var dir string
		if err := rows.Scan(&v.ID, &v.IdeaID, &v.VoterName, &dir, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Direction = models.Direction(dir)
		votes[v.IdeaID] = append(votes[v.IdeaID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}

// Tally counts an idea's votes outside any transaction
func (l *Ledger) Tally(ctx context.Context, ideaID int64) (models.Tally, error) {
	return tally(ctx, l.db, l.dialect, ideaID)
}

type voteTx struct {
	q       querier
	dialect db.Dialect
}

func (t *voteTx) FindVote(ctx context.Context, ideaID int64, voter string) (models.VoteRecord, bool, error) {
	query := `
		SELECT id, idea_id, voter_name, direction, created_at
		FROM vote WHERE idea_id = ? AND voter_name = ?
	`
	if t.dialect == db.DialectPostgres {
		query += ` FOR UPDATE`
	}

	var v models.VoteRecord
	var dir string
	err := t.q.QueryRowContext(ctx, rebind(t.dialect, query), ideaID, voter).
		Scan(&v.ID, &v.IdeaID, &v.VoterName, &dir, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VoteRecord{}, false, nil
	}
	if err != nil {
		return models.VoteRecord{}, false, fmt.Errorf("failed to query vote: %w", err)
	}
	v.Direction = models.Direction(dir)
	return v, true, nil
}

// InsertVote returns ErrDuplicateVote when the pair already has a record and
// ErrIdeaNotFound when the idea does not exist
func (t *voteTx) InsertVote(ctx context.Context, ideaID int64, voter string, dir models.Direction, at time.Time) (int64, error) {
	var id int64
	err := t.q.QueryRowContext(ctx, rebind(t.dialect, `
		INSERT INTO vote (idea_id, voter_name, direction, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), ideaID, voter, string(dir), at.UTC()).Scan(&id)
	if err != nil {
		switch constraintKind(err) {
		case constraintUnique:
			return 0, fmt.Errorf("%w: %v", ErrDuplicateVote, err)
		case constraintForeignKey:
			return 0, fmt.Errorf("%w: %v", ErrIdeaNotFound, err)
		}
		return 0, fmt.Errorf("failed to insert vote: %w", err)
	}
	return id, nil
}

func (t *voteTx) UpdateDirection(ctx context.Context, voteID int64, dir models.Direction) error {
	_, err := t.q.ExecContext(ctx, rebind(t.dialect, `
		UPDATE vote SET direction = ? WHERE id = ?
	`), string(dir), voteID)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

func (t *voteTx) DeleteVote(ctx context.Context, voteID int64) error {
	_, err := t.q.ExecContext(ctx, rebind(t.dialect, `DELETE FROM vote WHERE id = ?`), voteID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (t *voteTx) Tally(ctx context.Context, ideaID int64) (models.Tally, error) {
	return tally(ctx, t.q, t.dialect, ideaID)
}

func tally(ctx context.Context, q querier, dialect db.Dialect, ideaID int64) (models.Tally, error) {
	rows, err := q.QueryContext(ctx, rebind(dialect, `
		SELECT direction, COUNT(*) FROM vote
		WHERE idea_id = ?
		GROUP BY direction
	`), ideaID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	var t models.Tally
	for rows.Next() {
		var dir string
		var n int
		if err := rows.Scan(&dir, &n); err != nil {
			return models.Tally{}, fmt.Errorf("failed to scan vote count: %w", err)
		}
		switch models.Direction(dir) {
		case models.DirectionUp:
			t.Upvotes = n
		case models.DirectionDown:
			t.Downvotes = n
		}
	}
	if err := rows.Err(); err != nil {
		return models.Tally{}, fmt.Errorf("failed to iterate vote counts: %w", err)
	}
	return t, nil
}

// rebind rewrites ? placeholders to $n for postgres
func rebind(dialect db.Dialect, query string) string {
	if dialect != db.DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
