package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const listKey = "relay:received"

// Store holds received webhook payloads in arrival order. Positions are
// stable append indices, so a payload can be re-forwarded later by
// position.
type Store interface {
	Append(ctx context.Context, payload map[string]any) (int, error)
	Get(ctx context.Context, position int) (map[string]any, error)
	All(ctx context.Context) ([]map[string]any, error)
	Len(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisStore keeps the payload list in a Redis list so it survives
// restarts.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr string, db int) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{redis: rdb}, nil
}

func (s *RedisStore) Append(ctx context.Context, payload map[string]any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	n, err := s.redis.RPush(ctx, listKey, data).Result()
	if err != nil {
		return 0, err
	}
	return int(n) - 1, nil
}

func (s *RedisStore) Get(ctx context.Context, position int) (map[string]any, error) {
	if position < 0 {
		return nil, fmt.Errorf("invalid position %d", position)
	}
	data, err := s.redis.LIndex(ctx, listKey, int64(position)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("invalid position %d", position)
		}
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *RedisStore) All(ctx context.Context) ([]map[string]any, error) {
	items, err := s.redis.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(items))
	for _, item := range items {
		var payload map[string]any
		if err := json.Unmarshal([]byte(item), &payload); err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.redis.LLen(ctx, listKey).Result()
	return int(n), err
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}

// MemoryStore is the fallback when no Redis is configured. Unlike the
// prototype this one is safe under concurrent appends.
type MemoryStore struct {
	mu       sync.RWMutex
	payloads []map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, payload map[string]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return len(s.payloads) - 1, nil
}

func (s *MemoryStore) Get(_ context.Context, position int) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= len(s.payloads) {
		return nil, fmt.Errorf("invalid position %d", position)
	}
	return s.payloads[position], nil
}

func (s *MemoryStore) All(_ context.Context) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, len(s.payloads))
	copy(out, s.payloads)
	return out, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads), nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
