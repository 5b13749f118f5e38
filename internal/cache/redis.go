package cache

import (
	"context"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "journal:"

// Redis is the Cache implementation backed by a Redis server. Namespaces map
// onto key prefixes ("journal:entry:…", "journal:month:…") so a namespace
// sweep is a SCAN over its prefix.
type Redis struct {
	client *goredis.Client
}

func NewRedis(client *goredis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(namespace, key string) string {
	return redisKeyPrefix + namespace + ":" + key
}

// Get returns (nil, false) on any miss, timeout or transport error.
func (r *Redis) Get(ctx context.Context, namespace, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores value under key. Errors are logged rather than returned; a
// cache write miss is non-fatal.
func (r *Redis) Put(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, redisKey(namespace, key), value, ttl).Err(); err != nil {
		log.Printf("cache: write error for %s/%s: %v", namespace, key, err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, namespace, key string) {
	if err := r.client.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		log.Printf("cache: delete error for %s/%s: %v", namespace, key, err)
	}
}

// InvalidateAll scans and deletes every key in the namespace. Other
// namespaces are untouched.
func (r *Redis) InvalidateAll(ctx context.Context, namespace string) {
	pattern := redisKeyPrefix + namespace + ":*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			r.deleteKeys(ctx, namespace, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: scan error for namespace %s: %v", namespace, err)
	}
	if len(keys) > 0 {
		r.deleteKeys(ctx, namespace, keys)
	}
}

func (r *Redis) deleteKeys(ctx context.Context, namespace string, keys []string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: sweep delete error for namespace %s: %v", namespace, err)
	}
}
