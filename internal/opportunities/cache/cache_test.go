package cache

import (
	"context"
	"testing"
	"time"

	"repaircrm_backend/internal/opportunities/service"
	"repaircrm_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute, logger.New("development")), mr
}

func TestStatsCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stats := service.Stats{
		Qualified:            2,
		Won:                  3,
		Lost:                 1,
		ExpectedRevenueCents: 150000,
		ActualRevenueCents:   90000,
		WinRate:              0.75,
	}
	c.Set(ctx, "opportunity_stats:all", stats)

	got, ok := c.Get(ctx, "opportunity_stats:all")
	if !ok {
		t.Fatal("expected cache hit after Set")
	}
	if got != stats {
		t.Errorf("cached stats = %+v, want %+v", got, stats)
	}
}

func TestStatsCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	if _, ok := c.Get(context.Background(), "opportunity_stats:absent"); ok {
		t.Error("expected miss for an unset key")
	}
}

func TestStatsCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "opportunity_stats:all", service.Stats{Won: 1})
	mr.FastForward(2 * time.Minute)

	if _, ok := c.Get(ctx, "opportunity_stats:all"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestStatsCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set(keyPrefix+"opportunity_stats:all", "not json")
	if _, ok := c.Get(context.Background(), "opportunity_stats:all"); ok {
		t.Error("expected corrupt entry to read as a miss")
	}
}

func TestInvalidateAll(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "opportunity_stats:all", service.Stats{Won: 1})
	c.Set(ctx, "opportunity_stats:created:1756684800:1759276800", service.Stats{Won: 2})
	mr.Set(keyPrefix+"unrelated", "kept")

	c.InvalidateAll(ctx)

	if _, ok := c.Get(ctx, "opportunity_stats:all"); ok {
		t.Error("expected stats window to be invalidated")
	}
	if _, ok := c.Get(ctx, "opportunity_stats:created:1756684800:1759276800"); ok {
		t.Error("expected ranged stats window to be invalidated")
	}
	if !mr.Exists(keyPrefix + "unrelated") {
		t.Error("invalidation must not touch keys outside the stats namespace")
	}
}

// TestDegradesWhenRedisDown: a dead Redis turns every read into a miss and
// every write into a no-op instead of an error.
func TestDegradesWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	c.Set(ctx, "opportunity_stats:all", service.Stats{Won: 1})
	if _, ok := c.Get(ctx, "opportunity_stats:all"); ok {
		t.Error("expected miss while Redis is unreachable")
	}
	c.InvalidateAll(ctx)
}
