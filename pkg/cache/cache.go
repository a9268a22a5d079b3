package cache

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLSearch  = 30 * time.Second // search responses (content changes often)
	TTLMetrics = 1 * time.Minute  // dashboard counters
	TTLDefault = 5 * time.Minute
)

// Key prefixes
const (
	PrefixSearch  = "search:"
	PrefixMetrics = "metrics:"
)

// Service is a nil-safe Redis cache. A nil client degrades every
// operation to a cache miss; callers never need to branch on
// availability.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetSearch(ctx context.Context, owner, fingerprint string, dest interface{}) bool
	SetSearch(ctx context.Context, owner, fingerprint string, value interface{})
	InvalidateSearches(ctx context.Context, owner string) error

	GetDashboard(ctx context.Context, owner string, dest interface{}) bool
	SetDashboard(ctx context.Context, owner string, value interface{})
	InvalidateDashboard(ctx context.Context, owner string) error

	IsAvailable() bool
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service; client may be nil
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// Fingerprint hashes an arbitrary request shape into a stable cache key part
func Fingerprint(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "na"
	}
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) searchKey(owner, fingerprint string) string {
	return PrefixSearch + owner + ":" + fingerprint
}

func (c *redisCache) GetSearch(ctx context.Context, owner, fingerprint string, dest interface{}) bool {
	return c.Get(ctx, c.searchKey(owner, fingerprint), dest) == nil
}

func (c *redisCache) SetSearch(ctx context.Context, owner, fingerprint string, value interface{}) {
	_ = c.Set(ctx, c.searchKey(owner, fingerprint), value, TTLSearch)
}

func (c *redisCache) InvalidateSearches(ctx context.Context, owner string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixSearch+owner+":*")
}

func (c *redisCache) dashboardKey(owner string) string {
	return PrefixMetrics + owner
}

func (c *redisCache) GetDashboard(ctx context.Context, owner string, dest interface{}) bool {
	return c.Get(ctx, c.dashboardKey(owner), dest) == nil
}

func (c *redisCache) SetDashboard(ctx context.Context, owner string, value interface{}) {
	_ = c.Set(ctx, c.dashboardKey(owner), value, TTLMetrics)
}

func (c *redisCache) InvalidateDashboard(ctx context.Context, owner string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.dashboardKey(owner)).Err()
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
