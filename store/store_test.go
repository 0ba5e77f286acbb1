package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/parley/config"
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisWithClient(client, ttl, zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func setupTestSQLite(t *testing.T, path string) *SQLite {
	t.Helper()
	s, err := NewSQLite(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePlayer() *state.Player {
	p := state.NewPlayer("Hero", 4)
	p.AddXP(30)
	p.SetQuest("pizza_delivery", "done;1709294400000;1")
	p.Equip(&types.Item{ID: "m", Name: "money", Stackable: true, Quantity: 12})
	return p
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) PlayerStore{
		"memory": func(t *testing.T) PlayerStore { return NewMemory() },
		"redis": func(t *testing.T) PlayerStore {
			s, _ := setupTestRedis(t, 0)
			return s
		},
		"sqlite": func(t *testing.T) PlayerStore { return setupTestSQLite(t, ":memory:") },
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			_, err := s.Load(ctx, "hero")
			require.ErrorIs(t, err, ErrNotFound)

			p := samplePlayer()
			require.NoError(t, s.Save(ctx, p))

			got, err := s.Load(ctx, "HERO")
			require.NoError(t, err)
			assert.Equal(t, p.ID(), got.ID())
			assert.Equal(t, 30, got.XP())
			assert.Equal(t, "done;1709294400000;1", got.Quest("pizza_delivery"))
			assert.Equal(t, 12, state.CountItems(got, "money"))

			// Loaded copies are independent of the stored record.
			got.AddXP(100)
			again, err := s.Load(ctx, "hero")
			require.NoError(t, err)
			assert.Equal(t, 30, again.XP())

			// Save overwrites.
			p.AddXP(5)
			require.NoError(t, s.Save(ctx, p))
			again, err = s.Load(ctx, "hero")
			require.NoError(t, err)
			assert.Equal(t, 35, again.XP())

			require.NoError(t, s.Delete(ctx, "hero"))
			require.ErrorIs(t, s.Delete(ctx, "hero"), ErrNotFound)
			_, err = s.Load(ctx, "hero")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedis_TTL(t *testing.T) {
	s, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, samplePlayer()))

	assert.True(t, mr.Exists(KeyPrefix+"hero"))
	assert.Equal(t, time.Minute, mr.TTL(KeyPrefix+"hero"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Load(ctx, "hero")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_Corrupt(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	require.NoError(t, mr.Set(KeyPrefix+"hero", "{broken"))
	_, err := s.Load(context.Background(), "hero")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "players.db")
	ctx := context.Background()

	s := setupTestSQLite(t, path)
	require.NoError(t, s.Save(ctx, samplePlayer()))
	require.NoError(t, s.Close())

	reopened := setupTestSQLite(t, path)
	got, err := reopened.Load(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "Hero", got.Name())
}

func TestSQLite_EmptyPath(t *testing.T) {
	_, err := NewSQLite(context.Background(), "  ", zerolog.Nop())
	require.Error(t, err)
}

func TestWorldModifyPersists(t *testing.T) {
	s := NewMemory()
	w := state.NewWorld(zerolog.Nop(), s)
	p := samplePlayer()

	w.Modify(p)

	got, err := s.Load(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, p.ID(), got.ID())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.Config{Store: config.StoreMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, config.Config{Store: config.StoreSQLite, SQLitePath: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	s, err = Open(ctx, config.Config{Store: config.StoreRedis, RedisAddr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.Config{Store: "etcd"}, zerolog.Nop())
	assert.Error(t, err)
}
