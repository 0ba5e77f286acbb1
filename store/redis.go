package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/state"
)

// KeyPrefix namespaces player records in Redis.
const KeyPrefix = "parley:player:"

// Redis stores JSON records as plain string values. A positive TTL expires
// records that have not been saved for that long.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisWithClient(client, ttl, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Load(ctx context.Context, name string) (*state.Player, error) {
	b, err := r.client.Get(ctx, KeyPrefix+key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	return decode(name, b)
}

func (r *Redis) Save(ctx context.Context, p *state.Player) error {
	b, err := encode(p)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, KeyPrefix+key(p.Name()), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", p.Name(), err)
	}
	r.logger.Debug().Str("player", p.Name()).Msg("player saved")
	return nil
}

func (r *Redis) Delete(ctx context.Context, name string) error {
	n, err := r.client.Del(ctx, KeyPrefix+key(name)).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
