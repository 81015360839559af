package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces redemption entries in Redis.
const RedisKeyPrefix = "voucher:"

// RedisStore is a Store backed by Redis. Redis expires entries on its own,
// and Get re-checks Expires so clock skew never serves a stale entry.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a new store with Redis backend.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

func redisKey(key Key) string {
	return RedisKeyPrefix + key.String()
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.redis.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(layerRedis).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, errors.Wrap(err, "redis get")
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, errors.Mark(errors.Wrap(err, "decode cache entry"), ErrInvalidEntry)
	}
	entry.Response.HTTPStatus = entry.StatusCode
	if !entry.Upstream {
		entry.Response = entry.Response.WithoutRaw()
	}

	if entry.IsExpired() {
		CacheMisses.WithLabelValues(layerRedis).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(layerRedis).Inc()
	return &entry, nil
}

// Set stores a cache entry with a Redis TTL matching the entry's Expires.
// Entries that are already expired are not written.
func (s *RedisStore) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		CacheErrors.WithLabelValues("set").Inc()
		return ErrInvalidEntry
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return errors.Wrap(err, "marshal cache entry")
	}

	if err := s.redis.Set(ctx, redisKey(key), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return errors.Wrap(err, "redis set")
	}

	return nil
}

// Delete removes a cache entry.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, redisKey(key)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// remaining reports the Redis TTL of key (for testing).
func (s *RedisStore) remaining(ctx context.Context, key Key) (time.Duration, error) {
	return s.redis.TTL(ctx, redisKey(key)).Result()
}
