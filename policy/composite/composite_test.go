package composite

import (
	"testing"
	"time"

	"github.com/IvanBrykalov/strata/policy"
	"github.com/IvanBrykalov/strata/policy/idle"
	"github.com/IvanBrykalov/strata/policy/lru"
)

func TestComposite_FirstMemberWins(t *testing.T) {
	t.Parallel()

	a := lru.New[string]()
	b := lru.New[string]()
	p := New[string](a, b)

	p.Touch("x", policy.Access{})
	p.Touch("y", policy.Access{})

	// Both members track both keys; the first member's answer is used.
	if k, ok := p.SelectVictim(nil); !ok || k != "x" {
		t.Fatalf("victim want x, got %q ok=%v", k, ok)
	}
}

func TestComposite_FallsThroughEmptyMembers(t *testing.T) {
	t.Parallel()

	empty := lru.New[string]()
	backing := lru.New[string]()
	p := New[string](empty, backing)

	// Populate only the second member.
	backing.Touch("only", policy.Access{})

	if k, ok := p.SelectVictim(nil); !ok || k != "only" {
		t.Fatalf("selection must fall through to the second member, got %q ok=%v", k, ok)
	}
}

func TestComposite_BroadcastRemoveAndClear(t *testing.T) {
	t.Parallel()

	a := idle.New[string](time.Minute)
	b := lru.New[string]()
	p := New[string](a, b)

	p.Touch("x", policy.Access{AccessedAt: 1})
	p.Touch("y", policy.Access{AccessedAt: 2})

	p.Remove("x")
	if k, _ := a.SelectVictim(nil); k != "y" {
		t.Fatalf("member a must forget x, got %q", k)
	}
	if k, _ := b.SelectVictim(nil); k != "y" {
		t.Fatalf("member b must forget x, got %q", k)
	}

	p.Clear()
	if _, ok := p.SelectVictim(nil); ok {
		t.Fatal("cleared composite must have no candidate")
	}
}
