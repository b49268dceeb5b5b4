// Package lfu implements an O(1) Least-Frequently-Used eviction policy
// using frequency-bucketed doubly linked lists.
package lfu

import (
	"container/list"
	"sync"

	"github.com/IvanBrykalov/strata/policy"
)

// bucket groups all keys sharing one frequency. Within a bucket, entries
// toward the front were touched less recently, so ties between equal
// frequencies break toward the least-recent access.
type bucket[K comparable] struct {
	freq    uint64
	entries *list.List // element value is K
}

// keyState locates a key inside the bucket structure.
type keyState[K comparable] struct {
	bucketEl *list.Element // element of LFU.buckets whose value is *bucket[K]
	entryEl  *list.Element // element inside bucket.entries
}

// LFU tracks per-key access counts. Buckets are kept in a list ordered by
// ascending frequency; the front bucket's front entry is the victim.
// Touch, Remove, and SelectVictim are all O(1).
type LFU[K comparable] struct {
	mu      sync.Mutex
	buckets *list.List // *bucket[K], ascending by freq
	idx     map[K]*keyState[K]
}

// New constructs an empty LFU policy.
func New[K comparable]() *LFU[K] {
	return &LFU[K]{
		buckets: list.New(),
		idx:     make(map[K]*keyState[K]),
	}
}

// Touch increments k's frequency, inserting it at frequency 1 if unknown.
func (p *LFU[K]) Touch(k K, _ policy.Access) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.idx[k]
	if !ok {
		// New key: join (or create) the frequency-1 bucket.
		front := p.buckets.Front()
		if front == nil || front.Value.(*bucket[K]).freq != 1 {
			front = p.buckets.PushFront(&bucket[K]{freq: 1, entries: list.New()})
		}
		b := front.Value.(*bucket[K])
		p.idx[k] = &keyState[K]{bucketEl: front, entryEl: b.entries.PushBack(k)}
		return
	}

	// Existing key: move from its bucket to the freq+1 bucket.
	cur := st.bucketEl.Value.(*bucket[K])
	next := st.bucketEl.Next()
	if next == nil || next.Value.(*bucket[K]).freq != cur.freq+1 {
		next = p.buckets.InsertAfter(&bucket[K]{freq: cur.freq + 1, entries: list.New()}, st.bucketEl)
	}
	cur.entries.Remove(st.entryEl)
	if cur.entries.Len() == 0 {
		p.buckets.Remove(st.bucketEl)
	}
	nb := next.Value.(*bucket[K])
	st.bucketEl = next
	st.entryEl = nb.entries.PushBack(k)
}

// Remove forgets k.
func (p *LFU[K]) Remove(k K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.idx[k]
	if !ok {
		return
	}
	b := st.bucketEl.Value.(*bucket[K])
	b.entries.Remove(st.entryEl)
	if b.entries.Len() == 0 {
		p.buckets.Remove(st.bucketEl)
	}
	delete(p.idx, k)
}

// Clear drops all tracking state.
func (p *LFU[K]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets.Init()
	clear(p.idx)
}

// SelectVictim returns the least-frequent key, ties broken by least-recent
// access. When that key is forbidden, the next entry of the same bucket (or
// the next bucket's head) is proposed instead.
func (p *LFU[K]) SelectVictim(forbidden *K) (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	be := p.buckets.Front()
	if be == nil {
		var zero K
		return zero, false
	}
	el := be.Value.(*bucket[K]).entries.Front()
	if forbidden != nil && el.Value.(K) == *forbidden {
		if next := el.Next(); next != nil {
			el = next
		} else if nb := be.Next(); nb != nil {
			el = nb.Value.(*bucket[K]).entries.Front()
		} else {
			var zero K
			return zero, false
		}
	}
	return el.Value.(K), true
}

var _ policy.Policy[string] = (*LFU[string])(nil)
