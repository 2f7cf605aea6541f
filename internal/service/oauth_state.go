package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	oauthStateKeyPrefix = "oauth:state:"
	oauthStateTTL       = 10 * time.Minute
)

// StateStore holds pending OAuth state tokens between the redirect to the
// provider and the callback.
type StateStore interface {
	Save(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

// RedisStateStore is a redis-backed StateStore with per-state TTL
type RedisStateStore struct {
	rdb *redis.Client
}

// NewRedisStateStore creates a RedisStateStore
func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb}
}

// Save stores a state token for the callback to consume
func (s *RedisStateStore) Save(ctx context.Context, state string) error {
	return s.rdb.Set(ctx, oauthStateKeyPrefix+state, "1", oauthStateTTL).Err()
}

// Consume checks a state token and removes it, so each state is usable once
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	err := s.rdb.GetDel(ctx, oauthStateKeyPrefix+state).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
