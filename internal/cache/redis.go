// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisStore shares entries between engine replicas. Keys are stored under
// "<namespace>:<kind>:" and expire in Redis after their TTL as well.
type RedisStore[T any] struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore[T any](client redis.UniversalClient, namespace, kind string) *RedisStore[T] {
	return &RedisStore[T]{
		client: client,
		prefix: namespace + ":" + kind + ":",
	}
}

func (s *RedisStore[T]) Load(ctx context.Context, key string) (Entry[T], bool, error) {
	var entry Entry[T]

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return entry, true, nil
}

func (s *RedisStore[T]) Save(ctx context.Context, entry Entry[T]) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", entry.Key, err)
	}
	if err := s.client.Set(ctx, s.prefix+entry.Key, raw, entry.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", entry.Key, err)
	}
	return nil
}

// DeletePrefix walks matching keys with SCAN and removes them in batches.
func (s *RedisStore[T]) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(s.prefix+prefix) + "*"

	deleted := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis del %s: %w", prefix, err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
