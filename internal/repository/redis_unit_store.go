package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

type redisUnitClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisUnitStore keeps each unit as a string value under <prefix>:<key>.
type RedisUnitStore struct {
	client redisUnitClient
	prefix string
}

// NewRedisUnitStore constructs a redis-backed unit store.
func NewRedisUnitStore(client redisUnitClient, prefix string) *RedisUnitStore {
	return &RedisUnitStore{client: client, prefix: prefix}
}

func (s *RedisUnitStore) key(unit string) string {
	if s.prefix == "" {
		return unit
	}
	return s.prefix + ":" + unit
}

// Read retrieves the unit body.
func (s *RedisUnitStore) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrUnitNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Write stores the unit body without expiry.
func (s *RedisUnitStore) Write(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
