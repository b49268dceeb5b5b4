package cache

import (
	"time"

	"github.com/IvanBrykalov/strata/internal/util"
)

// Stats is an immutable snapshot of the cache's counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Loads         uint64
	LoadFailures  uint64
	TotalLoadTime time.Duration
}

// HitRate returns hits/(hits+misses), or 0 when no gets completed.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns 1-HitRate, or 0 when no gets completed.
func (s Stats) MissRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return 1 - s.HitRate()
}

// AvgLoadTime returns TotalLoadTime/Loads, or 0 when nothing loaded.
func (s Stats) AvgLoadTime() time.Duration {
	if s.Loads == 0 {
		return 0
	}
	return s.TotalLoadTime / time.Duration(s.Loads)
}

// counters is the live counter bank. Each counter sits on its own cache
// line: under contention many goroutines bump different counters and false
// sharing would serialize them.
//
// Increments use relaxed atomics; totals are eventually consistent across
// threads, exact after quiescence.
type counters struct {
	enabled bool

	hits         util.PaddedAtomicUint64
	misses       util.PaddedAtomicUint64
	evictions    util.PaddedAtomicUint64
	loads        util.PaddedAtomicUint64
	loadFailures util.PaddedAtomicUint64
	loadTime     util.PaddedAtomicUint64 // nanoseconds
}

func newCounters(enabled bool) *counters {
	return &counters{enabled: enabled}
}

func (c *counters) hit() {
	if c.enabled {
		c.hits.Add(1)
	}
}

func (c *counters) miss() {
	if c.enabled {
		c.misses.Add(1)
	}
}

func (c *counters) eviction() {
	if c.enabled {
		c.evictions.Add(1)
	}
}

func (c *counters) load(d time.Duration, ok bool) {
	if !c.enabled {
		return
	}
	c.loads.Add(1)
	c.loadTime.Add(uint64(d.Nanoseconds()))
	if !ok {
		c.loadFailures.Add(1)
	}
}

// snapshot returns a copy of the current totals.
func (c *counters) snapshot() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		Loads:         c.loads.Load(),
		LoadFailures:  c.loadFailures.Load(),
		TotalLoadTime: time.Duration(c.loadTime.Load()),
	}
}

// reset zeroes every counter.
func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.loads.Store(0)
	c.loadFailures.Store(0)
	c.loadTime.Store(0)
}
