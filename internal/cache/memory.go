package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Cache implementation used by the cache-transparency
// tests and local experiments. The service itself runs on Redis.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero time means no per-key expiry
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem)}
}

func memoryKey(namespace, key string) string {
	return namespace + ":" + key
}

func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, bool) {
	m.mu.RLock()
	item, ok := m.items[memoryKey(namespace, key)]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		m.Invalidate(context.Background(), namespace, key)
		return nil, false
	}
	return item.value, true
}

func (m *Memory) Put(_ context.Context, namespace, key string, value []byte, ttl time.Duration) {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.items[memoryKey(namespace, key)] = item
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, namespace, key string) {
	m.mu.Lock()
	delete(m.items, memoryKey(namespace, key))
	m.mu.Unlock()
}

func (m *Memory) InvalidateAll(_ context.Context, namespace string) {
	prefix := namespace + ":"
	m.mu.Lock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
}

// Len reports the number of live entries in the namespace.
func (m *Memory) Len(namespace string) int {
	prefix := namespace + ":"
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}
