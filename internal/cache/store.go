// internal/cache/store.go
package cache

import (
	"context"
	"strings"
	"sync"
)

// Store persists entries. Load reports found=false for absent keys; liveness
// is decided by Cache, not the store.
type Store[T any] interface {
	Load(ctx context.Context, key string) (entry Entry[T], found bool, err error)
	Save(ctx context.Context, entry Entry[T]) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// MemoryStore is a process-local Store.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[T]
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{entries: make(map[string]Entry[T])}
}

func (s *MemoryStore[T]) Load(_ context.Context, key string) (Entry[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, entry Entry[T]) error {
	s.mu.Lock()
	s.entries[entry.Key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[T]) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Len is the number of stored entries, live or stale.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
