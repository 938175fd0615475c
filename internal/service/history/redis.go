package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

const redisKeyPrefix = "historico:"

// RedisStore keeps each transcript as a Redis list under "historico:{id}".
// Push, trim and expiry run in one MULTI/EXEC so the bound holds even with
// several server instances sharing the same Redis.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A positive ttl expires sessions
// that receive no append for that long.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, sessionID string, item chat.Interaction) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction: %w", err)
	}

	key := redisKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, b)
		pipe.LTrim(ctx, key, -MaxInteractions, -1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to redis history: %w", err)
	}
	return nil
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, sessionID string) ([]chat.Interaction, error) {
	result, err := s.client.LRange(ctx, redisKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis history: %w", err)
	}

	items := make([]chat.Interaction, len(result))
	for i, raw := range result {
		if err := json.Unmarshal([]byte(raw), &items[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interaction at index %d: %w", i, err)
		}
	}
	return items, nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear redis history: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
