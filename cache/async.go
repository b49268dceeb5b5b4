package cache

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of an asynchronous cache operation.
type Result[V any] struct {
	Value V
	OK    bool
	Err   error
}

// asyncPool is the bounded worker pool behind the *Async operations.
// Submission blocks when all workers are busy; there is no queue that can
// overflow and no backpressure signal beyond that blocking.
type asyncPool struct {
	g errgroup.Group
}

func newAsyncPool(workers int) *asyncPool {
	p := &asyncPool{}
	p.g.SetLimit(workers)
	return p
}

func (p *asyncPool) submit(fn func()) {
	p.g.Go(func() error {
		fn()
		return nil
	})
}

// stop waits for in-flight work within the join window.
func (p *asyncPool) stop(join time.Duration) {
	done := make(chan struct{})
	go func() {
		_ = p.g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(join):
	}
}

// GetAsync dispatches the read (including the loader path) on the worker
// pool. The returned channel delivers exactly one Result.
func (c *cache[K, V]) GetAsync(ctx context.Context, k K) <-chan Result[V] {
	ch := make(chan Result[V], 1)
	c.pool.submit(func() {
		if err := ctx.Err(); err != nil {
			ch <- Result[V]{Err: err}
			return
		}
		if c.ldr != nil {
			v, err := c.GetOrLoad(ctx, k)
			if err != nil {
				ch <- Result[V]{Err: err}
				return
			}
			ch <- Result[V]{Value: v, OK: true}
			return
		}
		v, ok := c.Get(k)
		ch <- Result[V]{Value: v, OK: ok}
	})
	return ch
}

// PutAsync dispatches Put on the worker pool.
func (c *cache[K, V]) PutAsync(ctx context.Context, k K, v V) <-chan error {
	ch := make(chan error, 1)
	c.pool.submit(func() {
		if err := ctx.Err(); err != nil {
			ch <- err
			return
		}
		c.Put(k, v)
		ch <- nil
	})
	return ch
}

// RemoveAsync dispatches Remove on the worker pool.
func (c *cache[K, V]) RemoveAsync(ctx context.Context, k K) <-chan Result[V] {
	ch := make(chan Result[V], 1)
	c.pool.submit(func() {
		if err := ctx.Err(); err != nil {
			ch <- Result[V]{Err: err}
			return
		}
		v, ok := c.Remove(k)
		ch <- Result[V]{Value: v, OK: ok}
	})
	return ch
}

// ClearAsync dispatches Clear on the worker pool.
func (c *cache[K, V]) ClearAsync(ctx context.Context) <-chan error {
	ch := make(chan error, 1)
	c.pool.submit(func() {
		if err := ctx.Err(); err != nil {
			ch <- err
			return
		}
		c.Clear()
		ch <- nil
	})
	return ch
}
