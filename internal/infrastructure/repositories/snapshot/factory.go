package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"usdt-perp-symbols/internal/domain/interfaces"
	"usdt-perp-symbols/internal/infrastructure/config"
	"usdt-perp-symbols/internal/infrastructure/logging"
)

const pingTimeout = 2 * time.Second

// NewStoreFromConfig creates the configured snapshot store. An unreachable
// Redis degrades to the embedded store instead of failing the run.
func NewStoreFromConfig(ctx context.Context, cfg config.SnapshotConfig) (interfaces.SnapshotStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendEmbedded:
		return NewEmbeddedStore(), nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			logging.WithContext(ctx).WithFields(logrus.Fields{
				logging.FieldError: err.Error(),
				"addr":             cfg.Redis.Addr,
			}).Warn("Redis snapshot store unreachable, using embedded snapshot")
			return NewEmbeddedStore(), nil
		}

		logging.WithContext(ctx).WithFields(logrus.Fields{
			"addr":     cfg.Redis.Addr,
			"database": cfg.Redis.DB,
			"key":      cfg.Redis.Key,
		}).Debug("Redis snapshot store connected")
		return NewRedisStoreWithClient(rdb, cfg.Redis.Key, cfg.Redis.TTL), nil

	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s", cfg.Backend)
	}
}
