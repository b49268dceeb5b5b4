package cache

import (
	"sync"
)

// shard is one partition of the store: a key→entry map guarded by its own
// read/write latch. Shards hold no ordering state; ordering lives in the
// eviction policy, which the parent engine consults.
type shard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]*entry[V]
	c  *cache[K, V]
}

func newShard[K comparable, V any](c *cache[K, V], capacity int) *shard[K, V] {
	return &shard[K, V]{
		m: make(map[K]*entry[V], capacity),
		c: c,
	}
}

// get returns the live entry for k. An entry observed expired is removed
// under the write latch (with a double-check) and reported as absent.
func (s *shard[K, V]) get(k K, now int64) (*entry[V], bool) {
	s.mu.RLock()
	e, ok := s.m[k]
	if !ok {
		s.mu.RUnlock()
		return nil, false
	}
	if e.expired(now) {
		s.mu.RUnlock()
		s.expire(k, now)
		return nil, false
	}
	s.mu.RUnlock()
	return e, true
}

// put installs e under k. Replacing emits remove(old)+put(new); inserting
// emits only put. Returns false when onlyIfAbsent is set and a live entry
// already exists.
func (s *shard[K, V]) put(k K, e *entry[V], now int64, onlyIfAbsent bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.m[k]; ok {
		if onlyIfAbsent && !old.expired(now) {
			return false
		}
		s.m[k] = e
		s.c.curWeight.Add(e.weight - old.weight)
		s.c.ls.remove(k, old.value)
		s.c.ls.put(k, e.value)
		return true
	}

	s.m[k] = e
	s.c.curSize.Add(1)
	s.c.curWeight.Add(e.weight)
	s.c.ls.put(k, e.value)
	return true
}

// remove deletes k and returns its prior live value. An expired entry is
// expelled and reported as absent.
func (s *shard[K, V]) remove(k K, now int64) (V, bool) {
	s.mu.Lock()

	e, ok := s.m[k]
	if !ok {
		s.mu.Unlock()
		var zero V
		return zero, false
	}
	if e.expired(now) {
		s.dropLocked(k, e, EvictExpired)
		s.mu.Unlock()
		var zero V
		return zero, false
	}

	delete(s.m, k)
	s.c.pol.Remove(k)
	s.c.curSize.Add(-1)
	s.c.curWeight.Add(-e.weight)
	s.c.ls.remove(k, e.value)
	s.mu.Unlock()
	return e.value, true
}

// contains reports presence with the same expiration semantics as get but
// without updating recency.
func (s *shard[K, V]) contains(k K, now int64) bool {
	s.mu.RLock()
	e, ok := s.m[k]
	if !ok {
		s.mu.RUnlock()
		return false
	}
	if e.expired(now) {
		s.mu.RUnlock()
		s.expire(k, now)
		return false
	}
	s.mu.RUnlock()
	return true
}

// expire removes k if it is (still) expired. Callers observed expiration
// under the read latch; the state is re-checked under the write latch
// because a racing put may have installed a fresh entry meanwhile.
func (s *shard[K, V]) expire(k K, now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok || !e.expired(now) {
		return
	}
	s.dropLocked(k, e, EvictExpired)
}

// evict removes k on behalf of the eviction policy. Returns false when the
// key is no longer resident (a racing remove or expiry won).
func (s *shard[K, V]) evict(k K, reason EvictReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok {
		return false
	}
	s.dropLocked(k, e, reason)
	return true
}

// dropLocked removes an entry as an eviction: policy, counters, stats,
// metrics, and listener dispatch. Caller holds the write latch.
func (s *shard[K, V]) dropLocked(k K, e *entry[V], reason EvictReason) {
	delete(s.m, k)
	s.c.pol.Remove(k)
	s.c.curSize.Add(-1)
	s.c.curWeight.Add(-e.weight)
	s.c.stats.eviction()
	s.c.metrics.Evict(reason)
	s.c.ls.evict(k, e.value, reason)
}

// expiredKeys collects keys whose deadline passed, for the maintenance
// sweep. Read latch only; the sweep re-checks under the write latch.
func (s *shard[K, V]) expiredKeys(now int64) []K {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []K
	for k, e := range s.m {
		if e.expired(now) {
			out = append(out, k)
		}
	}
	return out
}

// keys appends the live keys of this shard to dst.
func (s *shard[K, V]) keys(dst []K, now int64) []K {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for k, e := range s.m {
		if !e.expired(now) {
			dst = append(dst, k)
		}
	}
	return dst
}
