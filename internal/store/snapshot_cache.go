package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// SnapshotKey is the cache key holding the serialized bulk asset list.
const SnapshotKey = "assets:snapshot"

// snapshotTTL bounds staleness if an invalidation is ever missed.
const snapshotTTL = 30 * time.Second

// SnapshotCache is a read-through Redis cache for the bulk asset fetch.
// Every asset mutation invalidates it, so a populated entry always
// reflects server-confirmed state. A nil cache disables caching.
type SnapshotCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewSnapshotCache(rs *RedisStore, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{client: rs.Client(), logger: logger}
}

// Get returns the cached asset list, or ok=false on miss or any cache
// error. Cache failures are logged, never surfaced to the caller.
func (c *SnapshotCache) Get(ctx context.Context) ([]domain.Asset, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("snapshot cache read failed", "error", err)
		}
		return nil, false
	}

	var assets []domain.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		c.logger.Warn("snapshot cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return assets, true
}

// Set stores the asset list with a TTL.
func (c *SnapshotCache) Set(ctx context.Context, assets []domain.Asset) {
	if c == nil {
		return
	}

	data, err := json.Marshal(assets)
	if err != nil {
		c.logger.Error("failed to marshal asset snapshot", "error", err)
		return
	}
	if err := c.client.Set(ctx, SnapshotKey, data, snapshotTTL).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", "error", err)
	}
}

// Invalidate drops the cached list. Called after every asset mutation.
func (c *SnapshotCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, SnapshotKey).Err(); err != nil {
		c.logger.Warn("snapshot cache invalidation failed", "error", err)
	}
}
