package cache

import (
	"context"
	"time"
)

// Cache is a sharded, in-memory key/value cache with bounded capacity,
// TTL expiration, and an optional loader. All methods are safe for
// concurrent use by multiple goroutines.
//
// Typical complexity for operations is amortized O(1): a map lookup plus
// constant-time policy bookkeeping under a shard latch.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag. On hit, the entry's
	// recency is updated according to the policy. On miss, a configured
	// loader is consulted; a load failure surfaces as absence.
	Get(k K) (V, bool)

	// GetIfPresent is Get without loader consultation.
	GetIfPresent(k K) (V, bool)

	// GetOrLoad returns the value for k, loading it via the configured
	// loader on miss. Concurrent loads for the same key are coalesced;
	// at most one loader invocation runs per key at any time.
	// Returns ErrNoLoader when no loader was configured.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Put inserts or replaces k→v using the cache-wide TTLs.
	Put(k K, v V)

	// PutWithTTL inserts or replaces k→v with a per-entry write-TTL
	// override. A non-positive ttl disables write expiration for this entry.
	PutWithTTL(k K, v V, ttl time.Duration)

	// PutIfAbsent inserts k→v only if no live entry exists.
	// Returns false if the key was already present (no update).
	PutIfAbsent(k K, v V) bool

	// Remove deletes k and returns the prior live value, if any.
	Remove(k K) (V, bool)

	// Contains reports presence with Get's expiration semantics but
	// without updating recency or the hit/miss counters.
	Contains(k K) bool

	// Clear removes every entry and resets policy state.
	Clear()

	// Size returns the number of resident entries.
	Size() int64

	// Weight returns the total resident weight.
	Weight() int64

	// Keys returns a point-in-time snapshot of the live keys.
	Keys() []K

	// Stats returns a snapshot of the statistics counters.
	Stats() Stats

	// ResetStats zeroes the statistics counters.
	ResetStats()

	// GetAsync dispatches Get (or the loader path) on the bounded worker
	// pool and delivers the outcome on the returned channel.
	GetAsync(ctx context.Context, k K) <-chan Result[V]

	// PutAsync dispatches Put on the worker pool; the channel reports
	// completion (nil) or a cancelled dispatch.
	PutAsync(ctx context.Context, k K, v V) <-chan error

	// RemoveAsync dispatches Remove on the worker pool.
	RemoveAsync(ctx context.Context, k K) <-chan Result[V]

	// ClearAsync dispatches Clear on the worker pool.
	ClearAsync(ctx context.Context) <-chan error

	// Close stops the maintenance task and the scheduling of background
	// refreshes, then waits for in-flight refreshes within a bounded join
	// window; an in-flight refresh is not cancelled. Store operations remain
	// usable after Close.
	Close() error
}
