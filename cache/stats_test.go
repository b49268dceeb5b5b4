package cache

import (
	"testing"
	"time"
)

// hits+misses equals the number of completed gets.
func TestStats_GetAccounting(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int, int]{
		MaximumSize: 32,
		Policy:      PolicyLRU,
		RecordStats: true,
	})

	for i := 0; i < 10; i++ {
		c.Put(i, i)
	}
	gets := 0
	for i := 0; i < 20; i++ { // 10 hits, 10 misses
		c.Get(i)
		gets++
	}

	st := c.Stats()
	if st.Hits != 10 || st.Misses != 10 {
		t.Fatalf("want 10/10, got hits=%d misses=%d", st.Hits, st.Misses)
	}
	if got := st.Hits + st.Misses; got != uint64(gets) {
		t.Fatalf("hits+misses must equal gets: %d != %d", got, gets)
	}
	if hr := st.HitRate(); hr != 0.5 {
		t.Fatalf("hit rate want 0.5, got %v", hr)
	}
	if mr := st.MissRate(); mr != 0.5 {
		t.Fatalf("miss rate want 0.5, got %v", mr)
	}
}

// Contains does not touch the hit/miss counters.
func TestStats_ContainsNotCounted(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int, int]{
		MaximumSize: 8,
		Policy:      PolicyLRU,
		RecordStats: true,
	})

	c.Put(1, 1)
	c.Contains(1)
	c.Contains(2)

	st := c.Stats()
	if st.Hits != 0 || st.Misses != 0 {
		t.Fatalf("Contains must not count, got %+v", st)
	}
}

// Rates on a fresh cache are defined as zero.
func TestStats_ZeroRates(t *testing.T) {
	t.Parallel()

	var s Stats
	if s.HitRate() != 0 || s.MissRate() != 0 || s.AvgLoadTime() != 0 {
		t.Fatal("zero-activity rates must be 0")
	}
}

// Snapshot is a copy: later activity does not mutate it.
func TestStats_SnapshotImmutable(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int, int]{
		MaximumSize: 8,
		Policy:      PolicyLRU,
		RecordStats: true,
	})

	c.Put(1, 1)
	c.Get(1)
	snap := c.Stats()
	c.Get(1)
	c.Get(2)

	if snap.Hits != 1 || snap.Misses != 0 {
		t.Fatalf("snapshot mutated: %+v", snap)
	}
}

// Reset zeroes every counter.
func TestStats_Reset(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int, int]{
		MaximumSize: 4,
		Policy:      PolicyLRU,
		RecordStats: true,
	})

	for i := 0; i < 10; i++ {
		c.Put(i, i)
		c.Get(i)
		c.Get(i + 100)
	}
	c.ResetStats()

	if st := c.Stats(); st != (Stats{}) {
		t.Fatalf("reset must zero counters, got %+v", st)
	}
}

// With RecordStats off, counters stay at zero.
func TestStats_Disabled(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int, int]{MaximumSize: 4, Policy: PolicyLRU})

	for i := 0; i < 10; i++ {
		c.Put(i, i)
		c.Get(i)
	}
	if st := c.Stats(); st != (Stats{}) {
		t.Fatalf("disabled stats must stay zero, got %+v", st)
	}
}

// AvgLoadTime derives from total load time and load count.
func TestStats_AvgLoadTime(t *testing.T) {
	t.Parallel()

	s := Stats{Loads: 4, TotalLoadTime: 200 * time.Millisecond}
	if got := s.AvgLoadTime(); got != 50*time.Millisecond {
		t.Fatalf("avg want 50ms, got %v", got)
	}
}
