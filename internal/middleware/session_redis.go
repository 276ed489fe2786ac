package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "tracker:session:" // tracker:session:{token} -> user id

// RedisSessionStore keeps sessions in Redis; expiry is left to key TTLs.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store on an existing client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, s.key(id), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (string, bool, error) {
	userID, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session: %w", err)
	}
	return userID, true, nil
}

func (s *RedisSessionStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) key(token string) string {
	return sessionKeyPrefix + token
}
