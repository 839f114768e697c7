// Package cache holds the Redis-backed cache for computed dashboard
// payloads. Dashboards are pure derivations of store snapshots, so cached
// entries are safe to serve until a meeting mutation invalidates them or
// the TTL expires.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no cached payload exists for a key.
var ErrMiss = redis.Nil

// DashboardCache stores serialized dashboard responses keyed by
// role/subject/month.
type DashboardCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a dashboard cache. A nil client disables caching: Get always
// misses and Set is a no-op, so callers need no nil checks.
func New(redisClient *redis.Client, ttl time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardCache{redis: redisClient, ttl: ttl}
}

func key(role, subjectID, month string) string {
	return fmt.Sprintf("dashboard:%s:%s:%s", role, subjectID, month)
}

// Get unmarshals a cached dashboard into dest. Returns ErrMiss when absent.
func (c *DashboardCache) Get(ctx context.Context, role, subjectID, month string, dest any) error {
	if c == nil || c.redis == nil {
		return ErrMiss
	}
	data, err := c.redis.Get(ctx, key(role, subjectID, month)).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: unmarshal dashboard: %w", err)
	}
	return nil
}

// Set stores a dashboard payload under the cache TTL.
func (c *DashboardCache) Set(ctx context.Context, role, subjectID, month string, payload any) error {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cache: marshal dashboard: %w", err)
	}
	if err := c.redis.Set(ctx, key(role, subjectID, month), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set dashboard: %w", err)
	}
	return nil
}

// Invalidate drops every cached month for the SDR and client touched by a
// meeting mutation, plus the manager rollups. An empty clientID skips the
// client patterns.
func (c *DashboardCache) Invalidate(ctx context.Context, sdrID, clientID string) error {
	if c == nil || c.redis == nil {
		return nil
	}
	patterns := []string{
		key("sdr", sdrID, "*"),
		key("manager", "agency", "*"),
	}
	if clientID != "" {
		patterns = append(patterns, key("client", clientID, "*"))
	}
	for _, pattern := range patterns {
		iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("cache: invalidate %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("cache: scan %s: %w", pattern, err)
		}
	}
	return nil
}
