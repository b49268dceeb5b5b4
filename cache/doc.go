// Package cache provides a fast, generic, sharded in-memory cache with
// pluggable eviction policies (Window-TinyLFU by default), write- and
// access-based TTL, single-flight loading with refresh-after-write,
// typed statistics, event listeners, and lightweight metrics hooks.
//
// Design
//
//   - Concurrency: the store is split into shards, each protected by an
//     RWMutex. The shard count comes from ConcurrencyLevel (rounded to a
//     power of two, default 16). Readers proceed concurrently; writers
//     exclude both on their shard only.
//
//   - Storage: each shard keeps a map[K]*entry. Ordering state lives in
//     the eviction policy, a single internally synchronized structure per
//     cache, so bounds hold globally rather than per shard.
//
//   - Bounds: MaximumSize limits the entry count; MaximumWeight plus a
//     Weigher limits total weight (mutually exclusive). After every
//     insert the engine evicts one policy-selected victim at a time until
//     back within bounds.
//
//   - Policies: LRU, LFU, FIFO, FILO, IDLE_TIME, WEIGHT, COMPOSITE, and
//     WINDOW_TINY_LFU, selected by name via Options.Policy. TinyLFU
//     admission is arbitrated by a count-min frequency sketch (packed
//     atomic counters by default, see SketchMode).
//
//   - Expiration: ExpireAfterWrite and ExpireAfterAccess may be combined;
//     the earlier deadline wins. Reads check expiration authoritatively;
//     a periodic maintenance task (default every 60s) sweeps the rest.
//
//   - Loading: GetOrLoad coalesces concurrent loads per key. With
//     RefreshAfterWrite, reads past the refresh age serve the current
//     value and reload in the background, one refresh per key.
//
//   - Statistics: RecordStats enables hit/miss/eviction/load counters
//     with derived rates; Stats() returns an immutable snapshot.
//
//   - Events: Listeners receive put/remove/evict/load/clear
//     notifications synchronously on the triggering goroutine.
//
// Basic usage
//
//	c, err := cache.New[string, []byte](cache.Options[string, []byte]{
//	    MaximumSize: 10_000,
//	    Policy:      cache.PolicyLRU,
//	})
//	if err != nil { ... }
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Remove("a")
//
// With a loader (single-flight)
//
//	c, _ := cache.New[string, string](cache.Options[string, string]{
//	    MaximumSize: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return fetch(ctx, k) // e.g. from a database
//	    },
//	})
//	v, err := c.GetOrLoad(ctx, "key")
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "app", "cache", nil)
//	c, _ := cache.New[string, []byte](cache.Options[string, []byte]{
//	    MaximumSize: 10_000,
//	    Metrics:     m,
//	    RecordStats: true,
//	})
//
// All methods on Cache are safe for concurrent use. Typical operation cost
// is O(1) expected: one map access plus constant policy bookkeeping.
package cache
