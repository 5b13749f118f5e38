// Package cache implements the time-bounded, key-addressed cache that fronts
// the journal store. Two independent namespaces exist: one for single-entry
// snapshots and one for month-aggregate calendar views. Invalidating a key or
// sweeping a namespace never touches the other namespace.
//
// The cache holds no authoritative state. Every value is reconstructible from
// the store, so cache failures of any sort degrade to a miss, never an error.
package cache

import (
	"context"
	"time"
)

// Cache namespaces.
const (
	NamespaceEntry = "entry"
	NamespaceMonth = "month"
)

// Cache is a byte-level cache with isolated namespaces. Implementations must
// treat every failure as a miss: Get returns false, mutations log and return.
type Cache interface {
	// Get returns the cached value for key, or false on miss or expiry.
	Get(ctx context.Context, namespace, key string) ([]byte, bool)

	// Put stores value under key, overwriting unconditionally. A zero ttl
	// means no per-key expiry (the daily sweep still applies).
	Put(ctx context.Context, namespace, key string, value []byte, ttl time.Duration)

	// Invalidate evicts a single key.
	Invalidate(ctx context.Context, namespace, key string)

	// InvalidateAll evicts every key in the namespace.
	InvalidateAll(ctx context.Context, namespace string)
}
