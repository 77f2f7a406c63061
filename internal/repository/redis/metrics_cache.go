package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

// MetricsCache keeps per-store metrics keyed by the reference clock,
// so a re-run against the same dataset reuses prior results. The
// cache is advisory: all failures degrade to a recompute.
type MetricsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	return &MetricsCache{Client: client, TTL: ttl}
}

func metricsKey(storeID string, clock time.Time) string {
	return fmt.Sprintf("store_metrics:%s:%d", storeID, clock.Unix())
}

func (c *MetricsCache) Get(ctx context.Context, storeID string, clock time.Time) (*entity.StoreMetrics, bool) {
	data, err := c.Client.Get(ctx, metricsKey(storeID, clock)).Bytes()
	if err != nil {
		return nil, false
	}
	m := &entity.StoreMetrics{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, false
	}
	return m, true
}

func (c *MetricsCache) Set(ctx context.Context, m entity.StoreMetrics, clock time.Time) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Client.Set(ctx, metricsKey(m.StoreID, clock), data, c.TTL)
}
