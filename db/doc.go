// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the driver from the dialect:

	dialect, _ := db.ParseDialect(cfg.DatabaseType)
	conn, err := db.Open(dialect, cfg.DatabaseURL)

PostgreSQL uses github.com/lib/pq; SQLite uses the pure-Go modernc.org/sqlite
driver with foreign keys enabled and a single writer connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - idea: id, title, description, author, created_at
  - vote: one row per (idea_id, voter_name), direction 'up' or 'down'

# Relationships

	idea 1──* vote

vote.idea_id uses ON DELETE CASCADE. UNIQUE (idea_id, voter_name) is the
guard against two concurrent first votes from the same voter.
*/
package db
