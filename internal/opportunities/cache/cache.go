// Package cache provides a Redis-backed cache for opportunity statistics.
// The cache is strictly an accelerator: any Redis failure degrades to a
// recompute, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"repaircrm_backend/internal/events"
	"repaircrm_backend/internal/opportunities/service"
	"repaircrm_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "repaircrm:"

type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func New(client *redis.Client, ttl time.Duration, log *logger.Logger) *StatsCache {
	return &StatsCache{client: client, ttl: ttl, log: log}
}

func (c *StatsCache) Get(ctx context.Context, key string) (service.Stats, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("stats cache read failed", "key", key, "error", err)
		}
		return service.Stats{}, false
	}

	var stats service.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.log.Warn("stats cache entry corrupt", "key", key, "error", err)
		return service.Stats{}, false
	}
	return stats, true
}

func (c *StatsCache) Set(ctx context.Context, key string, stats service.Stats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("stats cache write failed", "key", key, "error", err)
	}
}

// InvalidateAll drops every cached stats window. Called on any lead mutation;
// stats windows are cheap to recompute and mutations are rare relative to
// dashboard reads.
func (c *StatsCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"opportunity_stats:*", 100).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("stats cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("stats cache invalidation failed", "error", err)
	}
}

// SubscribeInvalidation registers the cache on the lead change stream so any
// row mutation clears stale windows.
func (c *StatsCache) SubscribeInvalidation(bus events.Bus) {
	bus.Subscribe(events.LeadChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		c.InvalidateAll(ctx)
		return nil
	}))
}

var _ service.StatsCache = (*StatsCache)(nil)
