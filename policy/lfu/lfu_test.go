package lfu

import (
	"testing"

	"github.com/IvanBrykalov/strata/policy"
)

func touchN(p *LFU[string], k string, n int) {
	for i := 0; i < n; i++ {
		p.Touch(k, policy.Access{})
	}
}

func TestLFU_VictimIsLeastFrequent(t *testing.T) {
	t.Parallel()

	p := New[string]()
	touchN(p, "cold", 1)
	touchN(p, "warm", 3)
	touchN(p, "hot", 10)

	if k, ok := p.SelectVictim(nil); !ok || k != "cold" {
		t.Fatalf("victim want cold, got %q ok=%v", k, ok)
	}

	p.Remove("cold")
	if k, _ := p.SelectVictim(nil); k != "warm" {
		t.Fatalf("victim want warm, got %q", k)
	}
}

func TestLFU_TiesBreakLeastRecent(t *testing.T) {
	t.Parallel()

	p := New[string]()
	touchN(p, "a", 2)
	touchN(p, "b", 2) // same frequency, touched later

	if k, _ := p.SelectVictim(nil); k != "a" {
		t.Fatalf("tie must break toward least recent, got %q", k)
	}

	// Touching "a" once more moves it to a higher bucket; "b" is alone at 2.
	touchN(p, "a", 1)
	if k, _ := p.SelectVictim(nil); k != "b" {
		t.Fatalf("victim want b, got %q", k)
	}
}

func TestLFU_ForbiddenSkips(t *testing.T) {
	t.Parallel()

	p := New[string]()
	touchN(p, "a", 1)
	touchN(p, "b", 1)
	touchN(p, "c", 5)

	forbidden := "a"
	if k, _ := p.SelectVictim(&forbidden); k != "b" {
		t.Fatalf("want same-bucket successor b, got %q", k)
	}

	p.Remove("b")
	// "a" alone in the lowest bucket and forbidden: next bucket's head.
	if k, _ := p.SelectVictim(&forbidden); k != "c" {
		t.Fatalf("want next-bucket head c, got %q", k)
	}

	p.Remove("c")
	if _, ok := p.SelectVictim(&forbidden); ok {
		t.Fatal("sole forbidden key must yield no candidate")
	}
}

func TestLFU_BucketsCollapse(t *testing.T) {
	t.Parallel()

	p := New[string]()
	touchN(p, "a", 1)
	touchN(p, "a", 1) // bucket 1 drained, bucket 2 created

	if k, ok := p.SelectVictim(nil); !ok || k != "a" {
		t.Fatalf("victim want a, got %q ok=%v", k, ok)
	}

	p.Clear()
	if _, ok := p.SelectVictim(nil); ok {
		t.Fatal("cleared policy must have no candidate")
	}
}
