// Package tinylfu implements the Window-TinyLFU eviction policy: a small
// admission window (LRU) in front of a segmented main region (probation +
// protected), with a count-min frequency sketch arbitrating whether a window
// victim may displace a main incumbent.
package tinylfu

import (
	"container/list"
	"sync"

	"github.com/IvanBrykalov/strata/internal/sketch"
	"github.com/IvanBrykalov/strata/policy"
)

// Region ratios fixed by the engine: the window is 1% of capacity (at least
// one entry); the main region splits probation:protected = 20:80.
const (
	windowPercent    = 1
	protectedPercent = 80
)

type segment uint8

const (
	segWindow segment = iota
	segProbation
	segProtected
)

type tnode[K comparable] struct {
	key  K
	hash uint64
	seg  segment
	el   *list.Element
}

// TinyLFU is the Window-TinyLFU policy. All three segment lists keep their
// most recently used entry at Front().
//
// The forbidden hint is deliberately ignored: the admission filter exists to
// judge the just-inserted key, and rejecting it (evicting it straight out of
// the window) is the filter working as intended.
type TinyLFU[K comparable] struct {
	mu sync.Mutex

	windowCap    int
	mainCap      int
	protectedCap int

	window    *list.List // *tnode[K]
	probation *list.List
	protected *list.List
	idx       map[K]*tnode[K]

	freq sketch.Sketch
}

// New constructs a Window-TinyLFU policy for the given total capacity,
// backed by the given frequency sketch.
func New[K comparable](capacity int, freq sketch.Sketch) *TinyLFU[K] {
	if capacity < 1 {
		capacity = 1
	}
	windowCap := capacity * windowPercent / 100
	if windowCap < 1 {
		windowCap = 1
	}
	mainCap := capacity - windowCap
	protectedCap := mainCap * protectedPercent / 100

	return &TinyLFU[K]{
		windowCap:    windowCap,
		mainCap:      mainCap,
		protectedCap: protectedCap,
		window:       list.New(),
		probation:    list.New(),
		protected:    list.New(),
		idx:          make(map[K]*tnode[K]),
		freq:         freq,
	}
}

// Touch records an access. New keys are admitted to the window; a window
// overflow spills its LRU entry into probation while the main region has
// room (contested admission is resolved later, in SelectVictim). A hit in
// probation promotes to protected, demoting the protected LRU back to
// probation when the protected segment is full.
func (p *TinyLFU[K]) Touch(k K, a policy.Access) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.freq.Increment(a.KeyHash)

	n, ok := p.idx[k]
	if !ok {
		n = &tnode[K]{key: k, hash: a.KeyHash, seg: segWindow}
		n.el = p.window.PushFront(n)
		p.idx[k] = n

		// Uncontested spill: while main has room, the window victim moves
		// to probation without consulting the sketch.
		if p.window.Len() > p.windowCap && p.mainLen() < p.mainCap {
			p.transferToProbation(p.window.Back().Value.(*tnode[K]))
		}
		return
	}

	switch n.seg {
	case segWindow:
		p.window.MoveToFront(n.el)
	case segProtected:
		p.protected.MoveToFront(n.el)
	case segProbation:
		p.probation.Remove(n.el)
		n.seg = segProtected
		n.el = p.protected.PushFront(n)
		if p.protected.Len() > p.protectedCap {
			demoted := p.protected.Back().Value.(*tnode[K])
			p.protected.Remove(demoted.el)
			demoted.seg = segProbation
			demoted.el = p.probation.PushFront(demoted)
		}
	}
}

// Remove forgets k.
func (p *TinyLFU[K]) Remove(k K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.idx[k]
	if !ok {
		return
	}
	p.listOf(n.seg).Remove(n.el)
	delete(p.idx, k)
}

// Clear drops all tracking state and resets the sketch.
func (p *TinyLFU[K]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window.Init()
	p.probation.Init()
	p.protected.Init()
	clear(p.idx)
	p.freq.Reset()
}

// SelectVictim resolves one eviction. When the window is over its quota,
// its LRU entry competes with the main region's LRU victim: the higher
// estimated frequency is retained and the loser is proposed. Ties retain
// the incumbent. Otherwise the victim comes from probation, then protected,
// then the window.
func (p *TinyLFU[K]) SelectVictim(_ *K) (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idx) == 0 {
		var zero K
		return zero, false
	}

	if p.window.Len() > p.windowCap {
		candidate := p.window.Back().Value.(*tnode[K])
		victim := p.mainVictim()
		if victim == nil {
			return candidate.key, true
		}
		if p.freq.Frequency(candidate.hash) > p.freq.Frequency(victim.hash) {
			// Candidate wins: it takes the incumbent's place in probation
			// and the incumbent is proposed for eviction.
			p.transferToProbation(candidate)
			return victim.key, true
		}
		return candidate.key, true
	}

	if v := p.mainVictim(); v != nil {
		return v.key, true
	}
	// Main empty: fall back to the window LRU.
	return p.window.Back().Value.(*tnode[K]).key, true
}

// mainVictim returns the main region's eviction candidate: probation LRU
// first, protected LRU when probation is empty, nil when main is empty.
func (p *TinyLFU[K]) mainVictim() *tnode[K] {
	if el := p.probation.Back(); el != nil {
		return el.Value.(*tnode[K])
	}
	if el := p.protected.Back(); el != nil {
		return el.Value.(*tnode[K])
	}
	return nil
}

func (p *TinyLFU[K]) transferToProbation(n *tnode[K]) {
	p.window.Remove(n.el)
	n.seg = segProbation
	n.el = p.probation.PushFront(n)
}

func (p *TinyLFU[K]) mainLen() int {
	return p.probation.Len() + p.protected.Len()
}

func (p *TinyLFU[K]) listOf(s segment) *list.List {
	switch s {
	case segWindow:
		return p.window
	case segProbation:
		return p.probation
	default:
		return p.protected
	}
}

var _ policy.Policy[string] = (*TinyLFU[string])(nil)
