package scoreboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	score       INTEGER NOT NULL,
	lines       INTEGER NOT NULL,
	level       INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS scores_rank ON scores (score DESC, lines DESC, recorded_at ASC);
`

// SQLiteStore keeps the entries in a sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite doesn't do concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint: errcheck
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, e Entry) (int, error) {
	e = e.complete()
	if err := e.Validate(); err != nil {
		return 0, err
	}
	at := e.RecordedAt.UnixNano()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint: errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scores (id, name, score, lines, level, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Score, e.Lines, e.Level, at,
	); err != nil {
		return 0, fmt.Errorf("failed to insert score: %w", err)
	}
	var better int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scores
		WHERE score > ?
		OR (score = ? AND lines > ?)
		OR (score = ? AND lines = ? AND recorded_at < ?)`,
		e.Score, e.Score, e.Lines, e.Score, e.Lines, at,
	).Scan(&better); err != nil {
		return 0, fmt.Errorf("failed to rank score: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit score: %w", err)
	}
	return better + 1, nil
}

func (s *SQLiteStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, score, lines, level, recorded_at FROM scores
		ORDER BY score DESC, lines DESC, recorded_at ASC, id ASC
		LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Score, &e.Lines, &e.Level, &at); err != nil {
			return nil, fmt.Errorf("failed to read score: %w", err)
		}
		e.RecordedAt = time.Unix(0, at).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
