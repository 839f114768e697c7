// Package bootstrap builds process-level dependencies (databases, Redis,
// the dashboard cache) from configuration. Every builder degrades to nil
// when its backing service is unconfigured so callers can wire optional
// infrastructure without branching.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/outboundhq/salesops-platform/internal/cache"
	appconfig "github.com/outboundhq/salesops-platform/internal/config"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, dashboard cache disabled", "error", err)
		return nil
	}
	return client
}

// BuildDashboardCache wraps the Redis client in the dashboard cache. A nil
// client yields a disabled cache that always misses.
func BuildDashboardCache(redisClient *redis.Client, cfg *appconfig.Config) *cache.DashboardCache {
	if cfg == nil {
		return cache.New(redisClient, 0)
	}
	return cache.New(redisClient, cfg.DashboardCacheTTL)
}

// OpenSQL opens and pings the shared database/sql pool used by the
// meeting, client, and SDR repositories.
func OpenSQL(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open sql pool: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping sql pool: %w", err)
	}
	return db, nil
}

// OpenPGXPool opens the pgx pool backing the assignments repository.
func OpenPGXPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping pgx pool: %w", err)
	}
	return pool, nil
}
