package cache

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/strata/internal/util"
	"github.com/IvanBrykalov/strata/policy"
)

// fallbackCapacityHint sizes TinyLFU regions and the sketch when the cache
// is weight-bounded or unbounded (no entry-count bound to derive from).
const fallbackCapacityHint = 1024

// cache is the engine behind the Cache interface: sharded storage, one
// global policy, global size/weight accounting, loader coordination, and a
// maintenance task.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	mask   uint64
	hashFn func(K) uint64

	pol policy.Policy[K]
	opt Options[K, V]

	stats   *counters
	ls      listenerSet[K, V]
	metrics Metrics
	log     Logger
	clock   Clock

	// Global totals. Invariant: after any completed operation they equal
	// the sums over live entries.
	curSize   atomic.Int64
	curWeight atomic.Int64

	// TTL knobs in nanoseconds; atomics because hot-config reload may
	// retune them while readers are in flight.
	ttlWrite     atomic.Int64
	ttlAccess    atomic.Int64
	refreshAfter atomic.Int64

	ldr   *loaderCoordinator[K, V]
	maint *maintainer[K, V]
	pool  *asyncPool

	closed atomic.Bool
}

// New constructs a cache from the given options. Invalid configurations
// are rejected here with a coded error; nothing is rejected later.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}

	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = NoopLogger{}
	}
	if opt.Clock == nil {
		opt.Clock = cachedClock{}
	}
	if opt.InitialCapacity <= 0 {
		opt.InitialCapacity = DefaultInitialCapacity
	}
	if opt.MaintenanceInterval == 0 {
		opt.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if opt.AsyncWorkers <= 0 {
		opt.AsyncWorkers = 2 * runtime.GOMAXPROCS(0)
	}
	if opt.Policy == "" {
		opt.Policy = PolicyWindowTinyLFU
	}

	hint := int(opt.MaximumSize)
	if hint <= 0 {
		hint = fallbackCapacityHint
	}

	nShards := util.NormalizeShardCount(opt.ConcurrencyLevel, DefaultConcurrencyLevel)

	c := &cache[K, V]{
		shards:  make([]*shard[K, V], nShards),
		mask:    uint64(nShards - 1),
		hashFn:  util.Fnv64a[K],
		pol:     opt.newPolicy(opt.Policy, hint),
		opt:     opt,
		stats:   newCounters(opt.RecordStats),
		ls:      listenerSet[K, V](opt.Listeners),
		metrics: opt.Metrics,
		log:     opt.Logger,
		clock:   opt.Clock,
		pool:    newAsyncPool(opt.AsyncWorkers),
	}
	c.ttlWrite.Store(int64(opt.ExpireAfterWrite))
	c.ttlAccess.Store(int64(opt.ExpireAfterAccess))
	c.refreshAfter.Store(int64(opt.RefreshAfterWrite))

	for i := range c.shards {
		c.shards[i] = newShard(c, opt.InitialCapacity)
	}

	if opt.Loader != nil || opt.AsyncLoader != nil {
		c.ldr = newLoaderCoordinator(c)
	}

	c.maint = newMaintainer(c, opt.MaintenanceInterval)
	c.maint.start()

	return c, nil
}

// ---- reads ----

// Get returns the live value for k. On miss, a configured loader is
// consulted; load failures surface as absence.
func (c *cache[K, V]) Get(k K) (V, bool) {
	if v, ok := c.lookup(k, true); ok {
		return v, true
	}
	if c.ldr != nil {
		v, err := c.ldr.load(context.Background(), k)
		if err != nil {
			var zero V
			return zero, false
		}
		return v, true
	}
	var zero V
	return zero, false
}

// GetIfPresent returns the live value for k without consulting the loader.
func (c *cache[K, V]) GetIfPresent(k K) (V, bool) {
	return c.lookup(k, true)
}

// GetOrLoad returns the value for k, loading it on miss. Concurrent loads
// for the same key are coalesced; every caller receives the shared result.
// Without a configured loader it returns ErrNoLoader.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := c.lookup(k, true); ok {
		return v, nil
	}
	if c.ldr == nil {
		var zero V
		return zero, ErrNoLoader
	}
	return c.ldr.load(ctx, k)
}

// Contains reports presence under the same expiration semantics as Get,
// without touching recency or the hit/miss counters.
func (c *cache[K, V]) Contains(k K) bool {
	h := c.hashFn(k)
	return c.shards[h&c.mask].contains(k, c.now())
}

// lookup is the shared read path: expiration check, access bookkeeping,
// policy touch, hit/miss accounting, and refresh scheduling.
func (c *cache[K, V]) lookup(k K, count bool) (V, bool) {
	h := c.hashFn(k)
	s := c.shards[h&c.mask]
	now := c.now()

	e, ok := s.get(k, now)
	if !ok {
		if count {
			c.stats.miss()
			c.metrics.Miss()
		}
		var zero V
		return zero, false
	}

	e.recordAccess(now, c.ttlAccess.Load())
	c.pol.Touch(k, policy.Access{KeyHash: h, Weight: e.weight, AccessedAt: now})
	if count {
		c.stats.hit()
		c.metrics.Hit()
	}

	if r := c.refreshAfter.Load(); r > 0 && c.ldr != nil && now >= e.createdAt+r {
		c.ldr.refresh(k)
	}
	return e.value, true
}

// ---- writes ----

// Put inserts or replaces k→v using the configured TTLs.
func (c *cache[K, V]) Put(k K, v V) {
	c.putInternal(k, v, c.ttlWrite.Load(), false)
}

// PutWithTTL inserts or replaces k→v with a per-entry write TTL override.
// A non-positive ttl disables write expiration for this entry.
func (c *cache[K, V]) PutWithTTL(k K, v V, ttl time.Duration) {
	c.putInternal(k, v, int64(ttl), false)
}

// PutIfAbsent inserts k→v only when no live entry exists. Returns false
// when the key was already present (no update is performed).
func (c *cache[K, V]) PutIfAbsent(k K, v V) bool {
	return c.putInternal(k, v, c.ttlWrite.Load(), true)
}

func (c *cache[K, V]) putInternal(k K, v V, ttlWrite int64, onlyIfAbsent bool) bool {
	h := c.hashFn(k)
	s := c.shards[h&c.mask]
	now := c.now()
	w := c.weigh(k, v)

	e := newEntry(v, w, now, ttlWrite, c.ttlAccess.Load())
	if !s.put(k, e, now, onlyIfAbsent) {
		return false
	}

	c.pol.Touch(k, policy.Access{KeyHash: h, Weight: w, AccessedAt: now})
	c.enforceBounds(&k)
	c.metrics.Size(c.curSize.Load(), c.curWeight.Load())
	return true
}

// Remove deletes k and returns its prior live value.
func (c *cache[K, V]) Remove(k K) (V, bool) {
	h := c.hashFn(k)
	return c.shards[h&c.mask].remove(k, c.now())
}

// Clear removes every entry. Shard latches are taken in index order, so
// concurrent Clears cannot deadlock; policy state and totals reset with
// the maps.
func (c *cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
	}
	for _, s := range c.shards {
		clear(s.m)
	}
	c.curSize.Store(0)
	c.curWeight.Store(0)
	c.pol.Clear()
	c.ls.clear()
	for i := len(c.shards) - 1; i >= 0; i-- {
		c.shards[i].mu.Unlock()
	}
	c.metrics.Size(0, 0)
}

// ---- introspection ----

// Size returns the number of resident entries.
func (c *cache[K, V]) Size() int64 { return c.curSize.Load() }

// Weight returns the total resident weight.
func (c *cache[K, V]) Weight() int64 { return c.curWeight.Load() }

// Keys returns a point-in-time snapshot of the live keys.
func (c *cache[K, V]) Keys() []K {
	now := c.now()
	out := make([]K, 0, c.curSize.Load())
	for _, s := range c.shards {
		out = s.keys(out, now)
	}
	return out
}

// Stats returns a snapshot of the statistics counters.
func (c *cache[K, V]) Stats() Stats { return c.stats.snapshot() }

// ResetStats zeroes the statistics counters.
func (c *cache[K, V]) ResetStats() { c.stats.reset() }

// Close cancels the maintenance task, waits out in-flight background
// loads, and drains the async pool, each within a bounded join window.
// Store operations remain usable after Close; only scheduled work stops.
func (c *cache[K, V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.maint.stop(DefaultMaintJoinTimeout)
	if c.ldr != nil {
		c.ldr.stop(DefaultLoaderJoinTimeout)
	}
	c.pool.stop(DefaultLoaderJoinTimeout)
	return nil
}

// ---- internals ----

func (c *cache[K, V]) now() int64 { return c.clock.NowUnixNano() }

// weigh computes the entry weight: the configured weigher clamped to >= 0,
// or 1 when none is configured.
func (c *cache[K, V]) weigh(k K, v V) int64 {
	if c.opt.Weigher == nil {
		return 1
	}
	w := c.opt.Weigher(k, v)
	if w < 0 {
		w = 0
	}
	return w
}

// enforceBounds evicts one policy-selected victim at a time until the
// configured bound holds again. Evicting singly (instead of computing a
// batch) avoids over-eviction when racing inserts also enforce.
func (c *cache[K, V]) enforceBounds(justInserted *K) {
	if max := c.opt.MaximumSize; max > 0 {
		for c.curSize.Load() > max {
			if !c.evictOne(justInserted, EvictSize) {
				break
			}
		}
	}
	if max := c.opt.MaximumWeight; max > 0 {
		for c.curWeight.Load() > max {
			if !c.evictOne(justInserted, EvictWeight) {
				break
			}
		}
	}
}

// evictOne asks the policy for a victim and removes it. A victim unknown
// to the store means policy state drifted (racing removal); the policy is
// told to forget it and enforcement continues.
func (c *cache[K, V]) evictOne(forbidden *K, reason EvictReason) bool {
	k, ok := c.pol.SelectVictim(forbidden)
	if !ok {
		return false
	}
	h := c.hashFn(k)
	if c.shards[h&c.mask].evict(k, reason) {
		return true
	}
	c.pol.Remove(k)
	c.log.Warn("eviction candidate not resident; policy state self-healed")
	return true
}

// Hot-config hooks (see hotconfig.go). New entries pick the values up
// immediately; existing entries keep their computed deadlines.

func (c *cache[K, V]) setExpireAfterWrite(d time.Duration) { c.ttlWrite.Store(int64(d)) }

func (c *cache[K, V]) setExpireAfterAccess(d time.Duration) { c.ttlAccess.Store(int64(d)) }

func (c *cache[K, V]) setRefreshAfterWrite(d time.Duration) { c.refreshAfter.Store(int64(d)) }

func (c *cache[K, V]) setMaintenanceInterval(d time.Duration) { c.maint.setInterval(d) }

var _ Cache[string, int] = (*cache[string, int])(nil)
