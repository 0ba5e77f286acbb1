// Package store persists player records. Every implementation encodes records
// with the save package and keys them by lower-cased player name.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/config"
	"github.com/nathoo/parley/engine/save"
	"github.com/nathoo/parley/engine/state"
)

// ErrNotFound is returned when no record exists for a player.
var ErrNotFound = errors.New("player not found")

// PlayerStore loads and saves player records. It satisfies state.Saver.
type PlayerStore interface {
	Load(ctx context.Context, name string) (*state.Player, error)
	Save(ctx context.Context, p *state.Player) error
	Delete(ctx context.Context, name string) error
	Close() error
}

var (
	_ state.Saver = PlayerStore(nil)
	_ PlayerStore = (*Memory)(nil)
	_ PlayerStore = (*Redis)(nil)
	_ PlayerStore = (*SQLite)(nil)
)

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func encode(p *state.Player) ([]byte, error) {
	b, err := save.Save(p, time.Now())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.Name(), err)
	}
	return b, nil
}

func decode(name string, b []byte) (*state.Player, error) {
	sd, err := save.Load(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return sd.Restore(), nil
}

// Open returns the store selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (PlayerStore, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return NewMemory(), nil
	case config.StoreRedis:
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL, logger)
	case config.StoreSQLite:
		return NewSQLite(ctx, cfg.SQLitePath, logger)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
