package dedup

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Deduper answers "have we seen this key recently". Used as a fast first
// line against webhook redeliveries before the durable event log is hit.
type Deduper interface {
	// FirstSeen marks the key and reports true only on its first sighting
	// within the retention window.
	FirstSeen(ctx context.Context, key string) (bool, error)

	// Forget drops the key so a later delivery counts as a first sighting
	// again. Called when processing fails after the key was marked, so the
	// provider's redelivery is not shadowed by the cache.
	Forget(ctx context.Context, key string) error
}

// RedisDeduper backs dedup with SETNX+TTL so the window is shared across
// instances.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisDeduper(redisURL string, ttl time.Duration) (*RedisDeduper, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisDeduper{
		client: redis.NewClient(opts),
		ttl:    ttl,
		prefix: "billing:evt:",
	}, nil
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, d.prefix+key, 1, d.ttl).Result()
}

func (d *RedisDeduper) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+key).Err()
}

// MemoryDeduper is the single-instance fallback when no redis is configured.
type MemoryDeduper struct {
	cache *cache.Cache
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (d *MemoryDeduper) FirstSeen(_ context.Context, key string) (bool, error) {
	err := d.cache.Add(key, struct{}{}, cache.DefaultExpiration)
	// Add errors only when the key already exists.
	return err == nil, nil
}

func (d *MemoryDeduper) Forget(_ context.Context, key string) error {
	d.cache.Delete(key)
	return nil
}
