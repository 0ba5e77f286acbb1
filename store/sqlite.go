package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nathoo/parley/engine/state"
)

// SQLite stores one row per player in a local database file.
type SQLite struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLite opens or creates the database at path. ":memory:" is accepted.
func NewSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serialises writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{`PRAGMA busy_timeout = 5000;`, `PRAGMA journal_mode = WAL;`} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensurePlayerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, logger: logger}, nil
}

func ensurePlayerSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS players (
    name TEXT PRIMARY KEY,
    player_id TEXT NOT NULL,
    record BLOB NOT NULL,
    updated_at_ms INTEGER NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("create players table: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, name string) (*state.Player, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM players WHERE name = ?`, key(name)).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return decode(name, b)
}

func (s *SQLite) Save(ctx context.Context, p *state.Player) error {
	b, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO players (name, player_id, record, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    player_id = excluded.player_id,
    record = excluded.record,
    updated_at_ms = excluded.updated_at_ms`,
		key(p.Name()), p.ID(), b, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save %s: %w", p.Name(), err)
	}
	s.logger.Debug().Str("player", p.Name()).Msg("player saved")
	return nil
}

func (s *SQLite) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE name = ?`, key(name))
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
