package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/optimizer"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

// Cache is a read-through cache over the otherwise read-only, immutable-per-
// run PostgresLoader output. It memoizes the assembled SnapshotInput per
// term key for a bounded TTL so repeat runs in a short window skip the
// join cost.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
	loader *PostgresLoader
}

// NewCache constructs a cache wrapping loader. A nil client disables caching
// and every Load call falls through to the loader.
func NewCache(client *redis.Client, loader *PostgresLoader, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, logger: logger, ttl: ttl, loader: loader}
}

func cacheKey(termID string) string {
	return fmt.Sprintf("snapshot:%s", termID)
}

// Load returns the cached SnapshotInput for termID if present and fresh,
// otherwise loads it from Postgres and populates the cache.
func (c *Cache) Load(ctx context.Context, termID string) (optimizer.SnapshotInput, error) {
	if c.client != nil {
		var cached optimizer.SnapshotInput
		if err := c.get(ctx, cacheKey(termID), &cached); err == nil {
			c.logger.Debug("snapshot cache hit", zap.String("term_id", termID))
			return cached, nil
		} else if err != appErrors.ErrCacheMiss {
			c.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
	}

	input, err := c.loader.Load(ctx, termID)
	if err != nil {
		return input, err
	}

	if c.client != nil {
		if err := c.set(ctx, cacheKey(termID), input); err != nil {
			c.logger.Warn("snapshot cache write failed", zap.Error(err))
		}
	}

	return input, nil
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cached snapshot %s: %w", key, err)
	}
	return nil
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops the cached snapshot for termID, used when an external
// edit to the academic dataset makes the cached copy stale.
func (c *Cache) Invalidate(ctx context.Context, termID string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, cacheKey(termID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", cacheKey(termID), err)
	}
	return nil
}
