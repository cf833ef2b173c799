// Package store persists the player's per-day completion checklist in a
// local SQLite database. A completion is keyed by event name, game day and
// an optional occurrence key so repeatable events can be ticked off per
// occurrence while one-shot events are ticked off per day.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	appLog "gamecal/internal/log"
	"gamecal/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	event          TEXT NOT NULL,
	game_day       TEXT NOT NULL,
	occurrence     TEXT NOT NULL DEFAULT '',
	completed_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
	PRIMARY KEY (event, game_day, occurrence)
);
`

// Store is safe for concurrent use; database/sql serializes access to the
// underlying connection.
type Store struct {
	db *sql.DB
}

// Completion is one checked-off row of a game day.
type Completion struct {
	Event         string `json:"event"`
	OccurrenceKey string `json:"occurrence_key,omitempty"`
}

// Open opens (creating if needed) the completion database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// modernc sqlite rejects concurrent writers on one file; a single
	// connection avoids SQLITE_BUSY under parallel requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	appLog.Info("completion store opened", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Toggle flips a completion and reports its new state. The delete and the
// insert run in one transaction so concurrent toggles of the same key cannot
// interleave into a duplicate insert.
func (s *Store) Toggle(ctx context.Context, day model.CivilDate, event, occurrenceKey string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("store: toggle: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM completions WHERE event = ? AND game_day = ? AND occurrence = ?`,
		event, day.String(), occurrenceKey)
	if err != nil {
		return false, fmt.Errorf("store: toggle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: toggle: %w", err)
	}

	completed := n == 0
	if completed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO completions (event, game_day, occurrence) VALUES (?, ?, ?)`,
			event, day.String(), occurrenceKey); err != nil {
			return false, fmt.Errorf("store: toggle: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: toggle: %w", err)
	}
	return completed, nil
}

// Completed lists the completions recorded for one game day.
func (s *Store) Completed(ctx context.Context, day model.CivilDate) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event, occurrence FROM completions WHERE game_day = ? ORDER BY event, occurrence`,
		day.String())
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := make([]Completion, 0)
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.Event, &c.OccurrenceKey); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// ResetDay clears every completion of one game day.
func (s *Store) ResetDay(ctx context.Context, day model.CivilDate) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM completions WHERE game_day = ?`, day.String())
	if err != nil {
		return fmt.Errorf("store: reset day: %w", err)
	}
	return nil
}
