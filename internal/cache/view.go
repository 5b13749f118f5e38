package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// View is a typed JSON wrapper over one cache namespace. Bind it to a view
// type T; each instance holds the namespace and the TTL applied on Put.
type View[T any] struct {
	cache     Cache
	namespace string
	ttl       time.Duration
}

// NewView creates a View over the given namespace of c.
func NewView[T any](c Cache, namespace string, ttl time.Duration) *View[T] {
	return &View[T]{cache: c, namespace: namespace, ttl: ttl}
}

// Get retrieves and unmarshals a value.
// Returns (nil, false) on any miss or deserialisation error.
func (v *View[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, ok := v.cache.Get(ctx, v.namespace, key)
	if !ok {
		return nil, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Put marshals value and stores it under key.
// Errors are logged rather than returned; a cache write miss is non-fatal.
func (v *View[T]) Put(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal error for %s/%s: %v", v.namespace, key, err)
		return
	}
	v.cache.Put(ctx, v.namespace, key, data, v.ttl)
}

// Invalidate evicts a single key from the namespace.
func (v *View[T]) Invalidate(ctx context.Context, key string) {
	v.cache.Invalidate(ctx, v.namespace, key)
}

// InvalidateAll evicts every key in the namespace.
func (v *View[T]) InvalidateAll(ctx context.Context) {
	v.cache.InvalidateAll(ctx, v.namespace)
}
