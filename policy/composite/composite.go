// Package composite chains several eviction policies: touches and removals
// broadcast to every member, victim selection asks each in order until one
// proposes a candidate.
package composite

import (
	"github.com/IvanBrykalov/strata/policy"
)

// Composite is an ordered sequence of policies. It holds no lock of its
// own; each member is internally synchronized, and selection is a pure
// fan-out.
type Composite[K comparable] struct {
	members []policy.Policy[K]
}

// New constructs a composite over the given members, consulted in order.
func New[K comparable](members ...policy.Policy[K]) *Composite[K] {
	return &Composite[K]{members: members}
}

// Touch broadcasts to all members.
func (p *Composite[K]) Touch(k K, a policy.Access) {
	for _, m := range p.members {
		m.Touch(k, a)
	}
}

// Remove broadcasts to all members.
func (p *Composite[K]) Remove(k K) {
	for _, m := range p.members {
		m.Remove(k)
	}
}

// Clear broadcasts to all members.
func (p *Composite[K]) Clear() {
	for _, m := range p.members {
		m.Clear()
	}
}

// SelectVictim asks each member in order and returns the first candidate.
func (p *Composite[K]) SelectVictim(forbidden *K) (K, bool) {
	for _, m := range p.members {
		if k, ok := m.SelectVictim(forbidden); ok {
			return k, true
		}
	}
	var zero K
	return zero, false
}

var _ policy.Policy[string] = (*Composite[string])(nil)
