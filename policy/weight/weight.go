// Package weight implements the weight-based eviction policy: the victim is
// the heaviest entry, ties broken by least-recent access.
package weight

import (
	"container/heap"
	"sync"

	"github.com/IvanBrykalov/strata/policy"
)

// item is a heap element. index is maintained by the heap interface so
// Remove and Fix stay O(log n).
type item[K comparable] struct {
	key        K
	weight     int64
	accessedAt int64
	index      int
}

// maxHeap orders items heaviest-first; equal weights surface the older
// access first.
type maxHeap[K comparable] []*item[K]

func (h maxHeap[K]) Len() int { return len(h) }

func (h maxHeap[K]) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight > h[j].weight
	}
	return h[i].accessedAt < h[j].accessedAt
}

func (h maxHeap[K]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *maxHeap[K]) Push(x any) {
	it := x.(*item[K])
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *maxHeap[K]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Weight tracks entries in an indexed max-heap. Touch and Remove are
// O(log n); SelectVictim is O(log n) in the forbidden-hint case and O(1)
// otherwise.
type Weight[K comparable] struct {
	mu   sync.Mutex
	heap maxHeap[K]
	idx  map[K]*item[K]
}

// New constructs an empty weight policy.
func New[K comparable]() *Weight[K] {
	return &Weight[K]{idx: make(map[K]*item[K])}
}

// Touch records the entry's weight and access time. Weight is immutable
// after insertion at the store layer, but a replaced entry arrives here as
// a Touch with the new weight, so the heap position is refreshed.
func (p *Weight[K]) Touch(k K, a policy.Access) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if it, ok := p.idx[k]; ok {
		it.weight = a.Weight
		it.accessedAt = a.AccessedAt
		heap.Fix(&p.heap, it.index)
		return
	}
	it := &item[K]{key: k, weight: a.Weight, accessedAt: a.AccessedAt}
	p.idx[k] = it
	heap.Push(&p.heap, it)
}

// Remove forgets k.
func (p *Weight[K]) Remove(k K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if it, ok := p.idx[k]; ok {
		heap.Remove(&p.heap, it.index)
		delete(p.idx, k)
	}
}

// Clear drops all tracking state.
func (p *Weight[K]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.heap = p.heap[:0]
	clear(p.idx)
}

// SelectVictim returns the heaviest key. When the root is forbidden it is
// temporarily popped so the runner-up can be inspected.
func (p *Weight[K]) SelectVictim(forbidden *K) (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.heap) == 0 {
		var zero K
		return zero, false
	}
	root := p.heap[0]
	if forbidden == nil || root.key != *forbidden {
		return root.key, true
	}
	if len(p.heap) == 1 {
		var zero K
		return zero, false
	}
	// Pop the forbidden root, read the new root, restore.
	heap.Pop(&p.heap)
	next := p.heap[0].key
	heap.Push(&p.heap, root)
	return next, true
}

var _ policy.Policy[string] = (*Weight[string])(nil)
