// Package lru implements the Least-Recently-Used eviction policy.
package lru

import (
	"container/list"
	"sync"

	"github.com/IvanBrykalov/strata/policy"
)

// LRU keeps keys in a doubly linked list ordered by recency:
// Front() is the most recently used key, Back() the least.
// All operations are O(1).
type LRU[K comparable] struct {
	mu    sync.Mutex
	order *list.List          // element value is K
	idx   map[K]*list.Element // key -> element
}

// New constructs an empty LRU policy.
func New[K comparable]() *LRU[K] {
	return &LRU[K]{
		order: list.New(),
		idx:   make(map[K]*list.Element),
	}
}

// Touch promotes k to most-recently-used, inserting it if unknown.
func (p *LRU[K]) Touch(k K, _ policy.Access) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.idx[k]; ok {
		p.order.MoveToFront(el)
		return
	}
	p.idx[k] = p.order.PushFront(k)
}

// Remove forgets k.
func (p *LRU[K]) Remove(k K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.idx[k]; ok {
		p.order.Remove(el)
		delete(p.idx, k)
	}
}

// Clear drops all tracking state.
func (p *LRU[K]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order.Init()
	clear(p.idx)
}

// SelectVictim returns the least-recently-used key. When the tail is the
// forbidden key, the candidate is its predecessor (one hop toward MRU).
func (p *LRU[K]) SelectVictim(forbidden *K) (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	el := p.order.Back()
	if el == nil {
		var zero K
		return zero, false
	}
	if forbidden != nil && el.Value.(K) == *forbidden {
		el = el.Prev()
		if el == nil {
			var zero K
			return zero, false
		}
	}
	return el.Value.(K), true
}

var _ policy.Policy[string] = (*LRU[string])(nil)
