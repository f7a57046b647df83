// Package cache provides a best-effort Redis cache for analytics responses.
// Dashboards poll these endpoints; a short TTL bounds staleness while keeping
// repeated fold-the-event-table work off the database.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "xainik/internal/platform/redis"
	"xainik/pkg/platform/circuit"
)

// AnalyticsCache stores serialized analytics responses keyed by query shape.
// All failures degrade to a miss: the cache never makes a read path fail.
//
// A circuit breaker guards the hot read path. While open, Get answers miss
// without touching Redis; Set keeps attempting writes and its successes close
// the breaker again.
type AnalyticsCache struct {
	client  *platformredis.Client
	ttl     time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

func New(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *AnalyticsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsCache{
		client:  client,
		ttl:     ttl,
		logger:  logger,
		breaker: circuit.New("analytics-cache", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
}

// Get returns the cached payload and whether it was present.
func (c *AnalyticsCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	if c.breaker.IsOpen() {
		return nil, false
	}
	val, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !isCacheMiss(err) {
			c.recordFailure(ctx, err)
		}
		return nil, false
	}
	c.recordSuccess(ctx)
	return val, true
}

// Set stores a payload with the configured TTL. Errors are logged, not returned.
func (c *AnalyticsCache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.recordFailure(ctx, err)
		c.logger.WarnContext(ctx, "analytics cache write failed", "key", key, "error", err)
		return
	}
	c.recordSuccess(ctx)
}

func (c *AnalyticsCache) recordFailure(ctx context.Context, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "analytics cache circuit opened, reads bypass redis", "error", err)
	}
}

func (c *AnalyticsCache) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "analytics cache circuit closed, reads restored")
	}
}

func isCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
