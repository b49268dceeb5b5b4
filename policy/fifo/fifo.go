// Package fifo implements the FIFO and FILO eviction policies.
// Only insertion order matters: touching an existing key never reorders it.
package fifo

import (
	"container/list"
	"sync"

	"github.com/IvanBrykalov/strata/policy"
)

// Order selects which end of the insertion queue is evicted.
type Order int

const (
	// FIFO evicts the earliest inserted key.
	FIFO Order = iota
	// FILO evicts the most recently inserted key.
	FILO
)

// Queue is the shared implementation behind both orders.
// The list is kept in insertion order: Front() is the oldest insert.
// Both policies ignore the forbidden hint: insertion order alone decides.
type Queue[K comparable] struct {
	mu    sync.Mutex
	order *list.List
	idx   map[K]*list.Element
	ord   Order
}

// New constructs an insertion-order policy evicting from the given end.
func New[K comparable](ord Order) *Queue[K] {
	return &Queue[K]{
		order: list.New(),
		idx:   make(map[K]*list.Element),
		ord:   ord,
	}
}

// Touch registers k on first sight; subsequent touches are no-ops.
func (p *Queue[K]) Touch(k K, _ policy.Access) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.idx[k]; ok {
		return
	}
	p.idx[k] = p.order.PushBack(k)
}

// Remove forgets k.
func (p *Queue[K]) Remove(k K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.idx[k]; ok {
		p.order.Remove(el)
		delete(p.idx, k)
	}
}

// Clear drops all tracking state.
func (p *Queue[K]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order.Init()
	clear(p.idx)
}

// SelectVictim returns the oldest (FIFO) or newest (FILO) inserted key.
func (p *Queue[K]) SelectVictim(_ *K) (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var el *list.Element
	if p.ord == FIFO {
		el = p.order.Front()
	} else {
		el = p.order.Back()
	}
	if el == nil {
		var zero K
		return zero, false
	}
	return el.Value.(K), true
}

var _ policy.Policy[int] = (*Queue[int])(nil)
