package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/accounts-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON strings with a Redis TTL.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, key string, data *Data, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Error("Failed to save session to Redis", err, map[string]interface{}{
			"user_id": data.UserID,
		})
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Data, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error("Failed to load session from Redis", err, nil)
		return nil, fmt.Errorf("load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		logger.Warn("Discarding unreadable session", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrNotFound
	}
	return &data, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		logger.Error("Failed to delete session from Redis", err, nil)
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
