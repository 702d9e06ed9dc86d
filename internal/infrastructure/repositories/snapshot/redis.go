package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"usdt-perp-symbols/internal/infrastructure/logging"
	"usdt-perp-symbols/internal/infrastructure/metrics"
)

const BackendRedis = "redis"

// RedisStore keeps the last successfully fetched symbol list in Redis and
// falls back to the embedded snapshot when Redis has nothing usable
type RedisStore struct {
	client   *redis.Client
	key      string
	ttl      time.Duration
	fallback *EmbeddedStore
}

// NewRedisStoreWithClient creates a Redis store on top of an existing client
func NewRedisStoreWithClient(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		key:      key,
		ttl:      ttl,
		fallback: NewEmbeddedStore(),
	}
}

// Load returns the last saved list, or the embedded snapshot on miss or failure
func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.RecordSnapshotOperation(BackendRedis, "load", "miss")
		return s.fallback.Load(ctx)
	}
	if err != nil {
		metrics.RecordSnapshotOperation(BackendRedis, "load", "error")
		logging.WithContext(ctx).WithField(logging.FieldError, err.Error()).
			Warn("Redis snapshot unavailable, using embedded snapshot")
		return s.fallback.Load(ctx)
	}

	var symbols []string
	if err := json.Unmarshal([]byte(val), &symbols); err != nil {
		metrics.RecordSnapshotOperation(BackendRedis, "load", "error")
		logging.WithContext(ctx).WithField(logging.FieldError, err.Error()).
			Warn("Corrupt Redis snapshot, using embedded snapshot")
		return s.fallback.Load(ctx)
	}

	metrics.RecordSnapshotOperation(BackendRedis, "load", "hit")
	return symbols, nil
}

// Save stores the list under the configured key. A zero TTL keeps it forever.
func (s *RedisStore) Save(ctx context.Context, symbols []string) error {
	if symbols == nil {
		symbols = []string{}
	}
	payload, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		metrics.RecordSnapshotOperation(BackendRedis, "save", "error")
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}

	metrics.RecordSnapshotOperation(BackendRedis, "save", "success")
	return nil
}

// Backend returns the backend name
func (s *RedisStore) Backend() string {
	return BackendRedis
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
