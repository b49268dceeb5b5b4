package cache

import "sync/atomic"

// entry is one cached value with its bookkeeping. The value, weight,
// createdAt, and write-TTL deadline are immutable after construction; an
// overwrite installs a whole new entry. Access metadata mutates through
// atomics so the read path stays under the shard's read latch.
type entry[V any] struct {
	value  V
	weight int64

	createdAt     int64 // UnixNano, set once
	writeDeadline int64 // createdAt + expire-after-write; 0 = none

	// expiresAt is the effective deadline: the earlier of writeDeadline and
	// the rolling access deadline. 0 = no expiration.
	expiresAt   atomic.Int64
	lastAccess  atomic.Int64
	accessCount atomic.Uint64
}

// newEntry constructs an entry created at now with the given TTLs (in
// nanoseconds; 0 disables the respective mode).
func newEntry[V any](v V, weight, now, ttlWrite, ttlAccess int64) *entry[V] {
	e := &entry[V]{
		value:     v,
		weight:    weight,
		createdAt: now,
	}
	if ttlWrite > 0 {
		e.writeDeadline = now + ttlWrite
	}
	e.lastAccess.Store(now)
	e.expiresAt.Store(effectiveDeadline(e.writeDeadline, now, ttlAccess))
	return e
}

// effectiveDeadline combines the fixed write deadline with the rolling
// access deadline; when both are set the earlier wins.
func effectiveDeadline(writeDeadline, now, ttlAccess int64) int64 {
	if ttlAccess <= 0 {
		return writeDeadline
	}
	d := now + ttlAccess
	if writeDeadline != 0 && writeDeadline < d {
		return writeDeadline
	}
	return d
}

// expired reports whether the entry's deadline has passed.
func (e *entry[V]) expired(now int64) bool {
	d := e.expiresAt.Load()
	return d != 0 && now >= d
}

// recordAccess bumps the access metadata and slides the access deadline.
// Safe under the shard's read latch; racing updates may lose an access
// count, which the statistics contract tolerates.
func (e *entry[V]) recordAccess(now, ttlAccess int64) {
	e.lastAccess.Store(now)
	e.accessCount.Add(1)
	if ttlAccess > 0 {
		e.expiresAt.Store(effectiveDeadline(e.writeDeadline, now, ttlAccess))
	}
}
