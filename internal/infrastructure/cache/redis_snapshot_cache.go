package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "catalog:snapshot:"

// RedisSnapshotCache stores resolved catalog snapshots keyed by version stamp.
// Suitable for distributed deployments where multiple instances share the
// resolved catalog.
type RedisSnapshotCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSnapshotCache creates a new Redis-backed snapshot cache
func NewRedisSnapshotCache(cfg RedisConfig) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSnapshotCache{
		client:    client,
		keyPrefix: snapshotKeyPrefix,
	}, nil
}

// NewRedisSnapshotCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisSnapshotCacheWithClient(client *redis.Client, keyPrefix string) *RedisSnapshotCache {
	if keyPrefix == "" {
		keyPrefix = snapshotKeyPrefix
	}
	return &RedisSnapshotCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached snapshot for the version stamp, or (nil, nil) on miss.
// A corrupt payload counts as a miss so the resolver rebuilds it.
func (c *RedisSnapshotCache) Get(ctx context.Context, versionStamp string) (*catalog.EffectiveCatalog, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+versionStamp).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot catalog.EffectiveCatalog
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, nil
	}
	return &snapshot, nil
}

// Set stores the snapshot under its version stamp with a TTL
func (c *RedisSnapshotCache) Set(ctx context.Context, versionStamp string, snapshot *catalog.EffectiveCatalog, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyPrefix+versionStamp, payload, ttl).Err()
}

// Close releases the Redis client
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
