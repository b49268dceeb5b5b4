package tinylfu

import (
	"strconv"
	"testing"

	"github.com/IvanBrykalov/strata/internal/sketch"
	"github.com/IvanBrykalov/strata/internal/util"
	"github.com/IvanBrykalov/strata/policy"
)

func acc(k string) policy.Access {
	return policy.Access{KeyHash: util.Fnv64a(k)}
}

func touchN(p *TinyLFU[string], k string, n int) {
	for i := 0; i < n; i++ {
		p.Touch(k, acc(k))
	}
}

// New keys land in the window; the window spills into probation while the
// main region has room.
func TestTinyLFU_AdmitsThroughWindow(t *testing.T) {
	t.Parallel()

	p := New[string](100, sketch.NewPacked(100))
	touchN(p, "a", 1)
	touchN(p, "b", 1) // "a" spills to probation (windowCap = 1)

	if p.window.Len() != 1 || p.probation.Len() != 1 {
		t.Fatalf("want window=1 probation=1, got %d/%d",
			p.window.Len(), p.probation.Len())
	}
}

// A probation hit promotes to protected; overflowing protected demotes its
// LRU end back to probation.
func TestTinyLFU_PromoteAndDemote(t *testing.T) {
	t.Parallel()

	// capacity 10: window 1, main 9, protected 7.
	p := New[string](10, sketch.NewPacked(10))
	for i := 0; i < 10; i++ {
		touchN(p, "k"+strconv.Itoa(i), 1)
	}

	// Second touch of a probation resident promotes it.
	touchN(p, "k0", 1)
	if n, ok := p.idx["k0"]; !ok || n.seg != segProtected {
		t.Fatal("probation hit must promote to protected")
	}

	// Promote enough keys to overflow protected (cap 7).
	for i := 1; i <= 7; i++ {
		touchN(p, "k"+strconv.Itoa(i), 1)
	}
	if p.protected.Len() != p.protectedCap {
		t.Fatalf("protected must hold at its cap, got %d want %d",
			p.protected.Len(), p.protectedCap)
	}
	// The earliest promoted key was demoted back to probation.
	if n := p.idx["k0"]; n.seg != segProbation {
		t.Fatal("protected overflow must demote the LRU end to probation")
	}
}

// A cold window candidate loses the admission contest against a warm
// incumbent and is evicted itself.
func TestTinyLFU_RejectsColdCandidate(t *testing.T) {
	t.Parallel()

	p := New[string](100, sketch.NewPacked(100))

	// 99 warmed keys: the first 98 settle in main and the last one stays in
	// the window until the first cold arrival spills it into main's last
	// free slot.
	for i := 0; i < 99; i++ {
		touchN(p, "warm"+strconv.Itoa(i), 1)
	}
	for round := 0; round < 5; round++ {
		for i := 0; i < 99; i++ {
			touchN(p, "warm"+strconv.Itoa(i), 1)
		}
	}

	// cold1 fills the last main slot's spill path; cold2 overfills the
	// window, making cold1 the candidate of the admission contest.
	touchN(p, "cold1", 1)
	touchN(p, "cold2", 1)

	k, ok := p.SelectVictim(nil)
	if !ok {
		t.Fatal("must propose a victim")
	}
	if k != "cold1" {
		t.Fatalf("cold candidate must lose the contest, got %q", k)
	}
}

// A frequent candidate displaces the main victim and is retained.
func TestTinyLFU_AdmitsFrequentCandidate(t *testing.T) {
	t.Parallel()

	p := New[string](100, sketch.NewPacked(100))

	for i := 0; i < 99; i++ {
		touchN(p, "warm"+strconv.Itoa(i), 2)
	}

	// "comeback" gets far more sketch hits than any incumbent, then
	// re-enters through the window; "noise" pushes it to the window's LRU
	// end so it becomes the contest's candidate.
	for i := 0; i < 10; i++ {
		p.freq.Increment(util.Fnv64a("comeback"))
	}
	touchN(p, "comeback", 1)
	touchN(p, "noise", 1)

	k, ok := p.SelectVictim(nil)
	if !ok {
		t.Fatal("must propose a victim")
	}
	if k == "comeback" {
		t.Fatal("frequent candidate must be retained, not proposed")
	}
	if n, found := p.idx["comeback"]; !found || n.seg != segProbation {
		t.Fatal("winning candidate must transfer into probation")
	}
}

// Remove and Clear maintain the tracking-set contract.
func TestTinyLFU_RemoveAndClear(t *testing.T) {
	t.Parallel()

	p := New[string](10, sketch.NewPacked(10))
	touchN(p, "a", 1)
	touchN(p, "b", 1)

	p.Remove("a")
	if _, ok := p.idx["a"]; ok {
		t.Fatal("removed key must leave the tracking set")
	}
	p.Remove("a") // unknown key is a no-op

	p.Clear()
	if len(p.idx) != 0 {
		t.Fatal("cleared policy must track nothing")
	}
	if _, ok := p.SelectVictim(nil); ok {
		t.Fatal("cleared policy must have no candidate")
	}
}

// Tiny capacities degenerate gracefully: everything lives in the window.
func TestTinyLFU_TinyCapacity(t *testing.T) {
	t.Parallel()

	p := New[string](1, sketch.NewPacked(1))
	touchN(p, "a", 1)
	touchN(p, "b", 1)

	if k, ok := p.SelectVictim(nil); !ok || (k != "a" && k != "b") {
		t.Fatalf("tiny cache must still propose a victim, got %q ok=%v", k, ok)
	}
}
