// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store keeps the session history in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sally-golding/stepsmart/internal/session"
)

// ErrNotFound is returned by Get for an unknown session ID.
var ErrNotFound = errors.New("store: session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	started_at      INTEGER NOT NULL,
	ended_at        INTEGER NOT NULL,
	duration        TEXT NOT NULL,
	steps           INTEGER NOT NULL,
	distance_m      DOUBLE NOT NULL,
	distance_miles  DOUBLE NOT NULL,
	cadence         INTEGER NOT NULL,
	cadence_stddev  DOUBLE NOT NULL,
	stride_length   DOUBLE NOT NULL,
	speed           DOUBLE NOT NULL,
	pace            DOUBLE NOT NULL,
	pressure_toe    INTEGER NOT NULL,
	pressure_arch   INTEGER NOT NULL,
	pressure_heel   INTEGER NOT NULL,
	strike          TEXT NOT NULL,
	insight         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions (started_at);
`

const columns = `id, started_at, ended_at, duration, steps, distance_m, distance_miles,
	cadence, cadence_stddev, stride_length, speed, pace,
	pressure_toe, pressure_arch, pressure_heel, strike, insight`

// Store is the session history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// one writer; also keeps ":memory:" databases to a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	log.Printf("store: session history at %s", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a session summary.
func (s *Store) Save(ctx context.Context, sum session.Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID,
		sum.StartedAt.UnixMilli(),
		sum.EndedAt.UnixMilli(),
		sum.Duration,
		sum.Steps,
		sum.DistanceMeters,
		sum.DistanceMiles,
		sum.Cadence,
		sum.CadenceStdDev,
		sum.StrideLength,
		sum.Speed,
		sum.Pace,
		sum.Pressure[0],
		sum.Pressure[1],
		sum.Pressure[2],
		string(sum.Strike),
		sum.Insight,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sum.ID, err)
	}
	return nil
}

// Get loads one session by ID.
func (s *Store) Get(ctx context.Context, id string) (session.Summary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM sessions WHERE id = ?`, id)
	sum, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return session.Summary{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sum, nil
}

// List returns up to limit sessions, newest first. A non-positive limit
// returns every session.
func (s *Store) List(ctx context.Context, limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		sum, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (session.Summary, error) {
	var (
		sum            session.Summary
		started, ended int64
		strike         string
	)
	err := r.Scan(
		&sum.ID,
		&started,
		&ended,
		&sum.Duration,
		&sum.Steps,
		&sum.DistanceMeters,
		&sum.DistanceMiles,
		&sum.Cadence,
		&sum.CadenceStdDev,
		&sum.StrideLength,
		&sum.Speed,
		&sum.Pace,
		&sum.Pressure[0],
		&sum.Pressure[1],
		&sum.Pressure[2],
		&strike,
		&sum.Insight,
	)
	if err != nil {
		return session.Summary{}, err
	}
	sum.StartedAt = time.UnixMilli(started).UTC()
	sum.EndedAt = time.UnixMilli(ended).UTC()
	sum.Strike = session.Strike(strike)
	return sum, nil
}
