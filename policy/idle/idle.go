// Package idle implements the idle-time eviction policy: the victim is the
// key that has gone longest without access.
package idle

import (
	"container/list"
	"sync"
	"time"

	"github.com/IvanBrykalov/strata/policy"
)

// node pairs a key with its last observed access time.
type node[K comparable] struct {
	key        K
	accessedAt int64
}

// Idle orders keys by last access: Front() is the most recently touched.
// The tail is simultaneously the key with the largest idle time and the
// globally oldest access, so both selection branches of the policy (over
// threshold preferred, oldest as fallback) resolve to the same O(1) lookup.
type Idle[K comparable] struct {
	mu      sync.Mutex
	maxIdle time.Duration
	order   *list.List // element value is *node[K]
	idx     map[K]*list.Element
}

// New constructs an idle-time policy with the given threshold.
func New[K comparable](maxIdle time.Duration) *Idle[K] {
	return &Idle[K]{
		maxIdle: maxIdle,
		order:   list.New(),
		idx:     make(map[K]*list.Element),
	}
}

// MaxIdle returns the configured idle threshold.
func (p *Idle[K]) MaxIdle() time.Duration { return p.maxIdle }

// Touch records an access to k at a.AccessedAt.
func (p *Idle[K]) Touch(k K, a policy.Access) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.idx[k]; ok {
		el.Value.(*node[K]).accessedAt = a.AccessedAt
		p.order.MoveToFront(el)
		return
	}
	p.idx[k] = p.order.PushFront(&node[K]{key: k, accessedAt: a.AccessedAt})
}

// Remove forgets k.
func (p *Idle[K]) Remove(k K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.idx[k]; ok {
		p.order.Remove(el)
		delete(p.idx, k)
	}
}

// Clear drops all tracking state.
func (p *Idle[K]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order.Init()
	clear(p.idx)
}

// SelectVictim returns the key idle the longest, skipping a forbidden tail
// by one hop.
func (p *Idle[K]) SelectVictim(forbidden *K) (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	el := p.order.Back()
	if el == nil {
		var zero K
		return zero, false
	}
	if forbidden != nil && el.Value.(*node[K]).key == *forbidden {
		el = el.Prev()
		if el == nil {
			var zero K
			return zero, false
		}
	}
	return el.Value.(*node[K]).key, true
}

// IdleSince reports the keys whose idle time meets the threshold at the
// given instant. The maintenance sweep consumes this; selection under
// capacity pressure never needs it.
func (p *Idle[K]) IdleSince(now int64) []K {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.maxIdle <= 0 {
		return nil
	}
	var out []K
	// Walk from the stale end; stop at the first fresh entry.
	for el := p.order.Back(); el != nil; el = el.Prev() {
		n := el.Value.(*node[K])
		if now-n.accessedAt < int64(p.maxIdle) {
			break
		}
		out = append(out, n.key)
	}
	return out
}

var _ policy.Policy[string] = (*Idle[string])(nil)
