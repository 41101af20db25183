// internal/cache/entry.go
package cache

import "time"

// Entry is an immutable cached value. Writers replace entries, never mutate them.
type Entry[T any] struct {
	Key       string        `json:"key"`
	Value     T             `json:"value"`
	CreatedAt time.Time     `json:"createdAt"`
	TTL       time.Duration `json:"ttl"`
}

// Live reports whether the entry is still servable at now.
func (e Entry[T]) Live(now time.Time) bool {
	return now.Sub(e.CreatedAt) < e.TTL
}
