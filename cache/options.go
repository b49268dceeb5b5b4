package cache

import (
	"context"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/IvanBrykalov/strata/internal/sketch"
	"github.com/IvanBrykalov/strata/policy"
	"github.com/IvanBrykalov/strata/policy/composite"
	"github.com/IvanBrykalov/strata/policy/fifo"
	"github.com/IvanBrykalov/strata/policy/idle"
	"github.com/IvanBrykalov/strata/policy/lfu"
	"github.com/IvanBrykalov/strata/policy/lru"
	"github.com/IvanBrykalov/strata/policy/tinylfu"
	"github.com/IvanBrykalov/strata/policy/weight"
)

// PolicyKind names a built-in eviction policy.
type PolicyKind string

// Recognized eviction policies. Unknown names are rejected at build time.
const (
	PolicyLRU           PolicyKind = "LRU"
	PolicyLFU           PolicyKind = "LFU"
	PolicyFIFO          PolicyKind = "FIFO"
	PolicyFILO          PolicyKind = "FILO"
	PolicyIdleTime      PolicyKind = "IDLE_TIME"
	PolicyWeight        PolicyKind = "WEIGHT"
	PolicyComposite     PolicyKind = "COMPOSITE"
	PolicyWindowTinyLFU PolicyKind = "WINDOW_TINY_LFU"
)

// SketchMode selects the frequency-sketch implementation backing
// Window-TinyLFU admission.
type SketchMode string

// Sketch modes.
const (
	SketchNone      SketchMode = "NONE"
	SketchBasic     SketchMode = "BASIC"
	SketchOptimized SketchMode = "OPTIMIZED"
)

// Clock provides time in UnixNano; inject a fake for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// cachedClock is the default clock. go-timecache amortizes time.Now() to a
// few nanoseconds, which matters because every get consults the clock for
// the expiration check.
type cachedClock struct{}

func (cachedClock) NowUnixNano() int64 { return timecache.CachedTimeNano() }

// Defaults applied by New.
const (
	DefaultConcurrencyLevel    = 16
	DefaultInitialCapacity     = 16
	DefaultMaintenanceInterval = 60 * time.Second
	DefaultLoaderJoinTimeout   = 10 * time.Second
	DefaultMaintJoinTimeout    = 5 * time.Second
)

// Options configures a cache. The zero value is a valid unbounded cache
// with the Window-TinyLFU policy and statistics disabled.
type Options[K comparable, V any] struct {
	// MaximumSize bounds the number of entries. Mutually exclusive with
	// MaximumWeight. 0 = unbounded.
	MaximumSize int64

	// MaximumWeight bounds the sum of per-entry weights; requires Weigher.
	MaximumWeight int64

	// Weigher computes an entry's weight once, at insertion. Entries weigh
	// 1 when nil. Negative results are clamped to 0.
	Weigher func(k K, v V) int64

	// ExpireAfterWrite is the absolute TTL from insert (0 = none).
	ExpireAfterWrite time.Duration

	// ExpireAfterAccess is the rolling TTL reset by reads and writes.
	ExpireAfterAccess time.Duration

	// RefreshAfterWrite: after this duration from insert, the next read
	// serves the current value and triggers a background reload.
	// Requires a loader.
	RefreshAfterWrite time.Duration

	// Policy selects the eviction strategy. Default: WINDOW_TINY_LFU.
	Policy PolicyKind

	// CompositePolicies lists the members of a COMPOSITE policy, consulted
	// in order. Only valid with Policy == COMPOSITE.
	CompositePolicies []PolicyKind

	// MaxIdleTime is the idle threshold for the IDLE_TIME policy.
	MaxIdleTime time.Duration

	// SketchMode selects the frequency sketch. Default: OPTIMIZED.
	SketchMode SketchMode

	// RecordStats enables the hit/miss/eviction/load counters.
	RecordStats bool

	// InitialCapacity hints the per-shard map size. Default: 16.
	InitialCapacity int

	// ConcurrencyLevel is the shard count, rounded up to a power of two.
	// Default: 16.
	ConcurrencyLevel int

	// Loader fetches a value on miss (and on refresh). Mutually exclusive
	// with AsyncLoader.
	Loader func(ctx context.Context, k K) (V, error)

	// AsyncLoader is the future-returning variant: the channel must deliver
	// exactly one LoadResult.
	AsyncLoader func(ctx context.Context, k K) <-chan LoadResult[V]

	// Listeners subscribe to put/remove/evict/load/clear events.
	Listeners []Listener[K, V]

	// Reference-weakening modes, modeled as eviction-pressure hints (weak
	// vs soft mutually exclusive for values).
	WeakKeys   bool
	WeakValues bool
	SoftValues bool

	// MaintenanceInterval is the period of the expired-entry sweep.
	// Default: 60s.
	MaintenanceInterval time.Duration

	// AsyncWorkers bounds the pool serving the *Async operations.
	// Default: 2×GOMAXPROCS.
	AsyncWorkers int

	// Observability hooks; Noop implementations are used when nil.
	Metrics Metrics
	Logger  Logger

	// Clock overrides the time source (tests). Nil = cached wall clock.
	Clock Clock
}

// validate rejects illegal option combinations. It does not
// mutate o; defaults are applied by New.
func (o *Options[K, V]) validate() error {
	if o.MaximumSize < 0 {
		return newErrInvalidMaxSize(o.MaximumSize)
	}
	if o.MaximumWeight < 0 {
		return newErrInvalidMaxWeight(o.MaximumWeight)
	}
	if o.MaximumSize > 0 && o.MaximumWeight > 0 {
		return newErrConflictingBounds()
	}
	if o.MaximumWeight > 0 && o.Weigher == nil {
		return newErrWeigherRequired()
	}
	if o.WeakValues && o.SoftValues {
		return newErrConflictingRefs()
	}
	if o.Loader != nil && o.AsyncLoader != nil {
		return newErrConflictingLoaders()
	}

	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"expire_after_write", o.ExpireAfterWrite},
		{"expire_after_access", o.ExpireAfterAccess},
		{"refresh_after_write", o.RefreshAfterWrite},
		{"max_idle_time", o.MaxIdleTime},
		{"maintenance_interval", o.MaintenanceInterval},
	} {
		if d.v < 0 {
			return newErrNegativeDuration(d.name, d.v.String())
		}
	}

	pol := o.Policy
	if pol == "" {
		pol = PolicyWindowTinyLFU
	}
	known := map[PolicyKind]bool{
		PolicyLRU: true, PolicyLFU: true, PolicyFIFO: true, PolicyFILO: true,
		PolicyIdleTime: true, PolicyWeight: true, PolicyComposite: true,
		PolicyWindowTinyLFU: true,
	}
	if !known[pol] {
		return newErrUnknownPolicy(string(pol))
	}
	switch mode := o.SketchMode; mode {
	case "", SketchNone, SketchBasic, SketchOptimized:
	default:
		return newErrUnknownSketchMode(string(mode))
	}

	if pol == PolicyIdleTime && o.MaxIdleTime == 0 {
		return newErrPolicyMismatch("IDLE_TIME requires max_idle_time", string(pol))
	}
	if o.MaxIdleTime > 0 && pol != PolicyIdleTime && !containsKind(o.CompositePolicies, PolicyIdleTime) {
		return newErrPolicyMismatch("max_idle_time requires the IDLE_TIME policy", string(pol))
	}
	if pol == PolicyWeight && o.Weigher == nil {
		return newErrPolicyMismatch("WEIGHT policy requires a weigher", string(pol))
	}
	if pol == PolicyComposite {
		if len(o.CompositePolicies) == 0 {
			return newErrPolicyMismatch("COMPOSITE requires member policies", string(pol))
		}
		for _, m := range o.CompositePolicies {
			if m == PolicyComposite {
				return newErrPolicyMismatch("COMPOSITE members must not nest", string(m))
			}
			if !known[m] {
				return newErrUnknownPolicy(string(m))
			}
			if m == PolicyIdleTime && o.MaxIdleTime == 0 {
				return newErrPolicyMismatch("IDLE_TIME requires max_idle_time", string(m))
			}
			if m == PolicyWeight && o.Weigher == nil {
				return newErrPolicyMismatch("WEIGHT policy requires a weigher", string(m))
			}
		}
	} else if len(o.CompositePolicies) > 0 {
		return newErrPolicyMismatch("composite_policies requires the COMPOSITE policy", string(pol))
	}

	return nil
}

func containsKind(ks []PolicyKind, k PolicyKind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

// newSketch builds the frequency sketch for the configured mode, sized for
// capacityHint entries.
func newSketch(mode SketchMode, capacityHint int) sketch.Sketch {
	switch mode {
	case SketchNone:
		return sketch.Disabled{}
	case SketchBasic:
		return sketch.NewBasic(capacityHint)
	default:
		return sketch.NewPacked(capacityHint)
	}
}

// newPolicy instantiates one policy kind. capacityHint sizes TinyLFU's
// regions and sketch; it is the entry bound when size-bounded, otherwise a
// generic estimate.
func (o *Options[K, V]) newPolicy(kind PolicyKind, capacityHint int) policy.Policy[K] {
	switch kind {
	case PolicyLRU:
		return lru.New[K]()
	case PolicyLFU:
		return lfu.New[K]()
	case PolicyFIFO:
		return fifo.New[K](fifo.FIFO)
	case PolicyFILO:
		return fifo.New[K](fifo.FILO)
	case PolicyIdleTime:
		return idle.New[K](o.MaxIdleTime)
	case PolicyWeight:
		return weight.New[K]()
	case PolicyComposite:
		members := make([]policy.Policy[K], 0, len(o.CompositePolicies))
		for _, m := range o.CompositePolicies {
			members = append(members, o.newPolicy(m, capacityHint))
		}
		return composite.New[K](members...)
	default: // PolicyWindowTinyLFU
		return tinylfu.New[K](capacityHint, newSketch(o.SketchMode, capacityHint))
	}
}
