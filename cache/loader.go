package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/strata/internal/singleflight"
)

// LoadResult is one outcome of an asynchronous loader: exactly one must be
// delivered on the loader's channel.
type LoadResult[V any] struct {
	Value V
	Err   error
}

// loaderCoordinator runs loads and refreshes for the engine.
//
// Guarantees:
//   - at most one load per key in flight (singleflight); followers share
//     the leader's result, and a follower's context cancels only its wait;
//   - at most one background refresh per key in flight;
//   - every loader invocation is timed and recorded in stats/metrics and
//     dispatched to load/load-error listeners;
//   - a failed load installs nothing: the next read re-attempts.
type loaderCoordinator[K comparable, V any] struct {
	c  *cache[K, V]
	sf singleflight.Group[K, V]

	mu         sync.Mutex
	refreshing map[K]struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
}

func newLoaderCoordinator[K comparable, V any](c *cache[K, V]) *loaderCoordinator[K, V] {
	return &loaderCoordinator[K, V]{
		c:          c,
		refreshing: make(map[K]struct{}),
	}
}

// load resolves a miss for k through the loader, coalescing concurrent
// callers. The winning caller double-checks the store first: a racing put
// or a completed sibling load must not trigger a redundant fetch.
func (l *loaderCoordinator[K, V]) load(ctx context.Context, k K) (V, error) {
	v, err, _ := l.sf.Do(ctx, k, func() (V, error) {
		if v, ok := l.c.lookup(k, false); ok {
			return v, nil
		}
		return l.invoke(ctx, k)
	})
	return v, err
}

// invoke runs one loader call: dispatch, timing, stats, listeners, and on
// success the install. The duration covers dispatch to outcome.
func (l *loaderCoordinator[K, V]) invoke(ctx context.Context, k K) (V, error) {
	start := time.Now()

	var v V
	var err error
	if l.c.opt.Loader != nil {
		v, err = l.c.opt.Loader(ctx, k)
	} else {
		select {
		case r, ok := <-l.c.opt.AsyncLoader(ctx, k):
			if !ok {
				err = newErrLoaderCancelled(nil)
			} else {
				v, err = r.Value, r.Err
			}
		case <-ctx.Done():
			err = newErrLoaderCancelled(ctx.Err())
		}
	}

	d := time.Since(start)
	ok := err == nil
	l.c.stats.load(d, ok)
	l.c.metrics.ObserveLoad(d, ok)

	if !ok {
		if !IsLoaderError(err) {
			if ctx.Err() != nil {
				err = newErrLoaderCancelled(err)
			} else {
				err = newErrLoaderFailed(err)
			}
		}
		l.c.ls.loadError(k, err)
		var zero V
		return zero, err
	}

	l.c.ls.load(k, v)
	l.c.putInternal(k, v, l.c.ttlWrite.Load(), false)
	return v, nil
}

// refresh schedules a background reload of k unless one is already in
// flight. The stale value keeps being served until the reload installs.
func (l *loaderCoordinator[K, V]) refresh(k K) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	if _, busy := l.refreshing[k]; busy {
		l.mu.Unlock()
		return
	}
	l.refreshing[k] = struct{}{}
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer func() {
			l.mu.Lock()
			delete(l.refreshing, k)
			l.mu.Unlock()
			l.wg.Done()
		}()
		// A failed refresh leaves the current value in place; the next
		// qualifying read schedules another attempt. Going through the
		// singleflight group keeps a refresh from overlapping a load of k.
		_, _, _ = l.sf.Do(context.Background(), k, func() (V, error) {
			return l.invoke(context.Background(), k)
		})
	}()
}

// stop rejects new refreshes and waits for in-flight ones within the join
// window. Loads driven by callers are not waited on: their lifetime is the
// caller's.
func (l *loaderCoordinator[K, V]) stop(join time.Duration) {
	l.closed.Store(true)

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(join):
		l.c.log.Warn("refresh workers did not drain within the join window")
	}
}
