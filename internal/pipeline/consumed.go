package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// ConsumedKeyStore remembers the last auto-opened action per scope.
type ConsumedKeyStore interface {
	LastConsumed(ctx context.Context, scope string) (domain.ActionKey, error)
	MarkConsumed(ctx context.Context, scope string, key domain.ActionKey) error
}

type MemoryConsumedKeys struct {
	mu   sync.Mutex
	keys map[string]domain.ActionKey
}

func NewMemoryConsumedKeys() *MemoryConsumedKeys {
	return &MemoryConsumedKeys{keys: make(map[string]domain.ActionKey)}
}

func (m *MemoryConsumedKeys) LastConsumed(_ context.Context, scope string) (domain.ActionKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[scope], nil
}

func (m *MemoryConsumedKeys) MarkConsumed(_ context.Context, scope string, key domain.ActionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[scope] = key
	return nil
}

// RedisConsumedKeys shares consumed keys between client processes.
type RedisConsumedKeys struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisConsumedKeys(client *redis.Client, ttl time.Duration) *RedisConsumedKeys {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisConsumedKeys{client: client, ttl: ttl}
}

func consumedKey(scope string) string {
	return "carrental:autoopen:" + scope
}

func (r *RedisConsumedKeys) LastConsumed(ctx context.Context, scope string) (domain.ActionKey, error) {
	logger.ExternalServiceCall("redis", "GET", "scope", scope)
	v, err := r.client.Get(ctx, consumedKey(scope)).Result()
	if errors.Is(err, redis.Nil) {
		logger.ExternalServiceResult("redis", "GET", nil, "found", false)
		return "", nil
	}
	logger.ExternalServiceResult("redis", "GET", err)
	if err != nil {
		return "", err
	}
	return domain.ActionKey(v), nil
}

func (r *RedisConsumedKeys) MarkConsumed(ctx context.Context, scope string, key domain.ActionKey) error {
	logger.ExternalServiceCall("redis", "SET", "scope", scope, "action", key)
	err := r.client.Set(ctx, consumedKey(scope), string(key), r.ttl).Err()
	logger.ExternalServiceResult("redis", "SET", err)
	return err
}
