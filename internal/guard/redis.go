package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// releaseScript deletes the key only if it still carries our token, so an
// expired lease never frees a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares submission locks across server replicas.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (Lease, error) {
	token := uuid.NewString()
	logger.ExternalServiceCall("redis", "SETNX", "key", key, "ttl", g.ttl)
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	logger.ExternalServiceResult("redis", "SETNX", err, "acquired", ok)
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSubmissionInFlight, key)
	}
	return &redisLease{client: g.client, key: key, token: token}, nil
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release submission lock: %w", err)
	}
	return nil
}
