package weight

import (
	"testing"

	"github.com/IvanBrykalov/strata/policy"
)

func acc(w, ts int64) policy.Access {
	return policy.Access{Weight: w, AccessedAt: ts}
}

func TestWeight_VictimIsHeaviest(t *testing.T) {
	t.Parallel()

	p := New[string]()
	p.Touch("light", acc(1, 10))
	p.Touch("heavy", acc(100, 20))
	p.Touch("mid", acc(50, 30))

	if k, ok := p.SelectVictim(nil); !ok || k != "heavy" {
		t.Fatalf("victim want heavy, got %q ok=%v", k, ok)
	}

	p.Remove("heavy")
	if k, _ := p.SelectVictim(nil); k != "mid" {
		t.Fatalf("victim want mid, got %q", k)
	}
}

func TestWeight_TiesBreakLeastRecent(t *testing.T) {
	t.Parallel()

	p := New[string]()
	p.Touch("older", acc(10, 100))
	p.Touch("newer", acc(10, 200))

	if k, _ := p.SelectVictim(nil); k != "older" {
		t.Fatalf("tie must break toward least recent, got %q", k)
	}

	// Touching "older" refreshes its access time: "newer" is now older.
	p.Touch("older", acc(10, 300))
	if k, _ := p.SelectVictim(nil); k != "newer" {
		t.Fatalf("victim want newer after re-touch, got %q", k)
	}
}

func TestWeight_ForbiddenYieldsRunnerUp(t *testing.T) {
	t.Parallel()

	p := New[string]()
	p.Touch("a", acc(100, 1))
	p.Touch("b", acc(50, 2))

	forbidden := "a"
	if k, ok := p.SelectVictim(&forbidden); !ok || k != "b" {
		t.Fatalf("victim want runner-up b, got %q ok=%v", k, ok)
	}

	// The heap is intact afterwards.
	if k, _ := p.SelectVictim(nil); k != "a" {
		t.Fatalf("root must be restored, got %q", k)
	}

	p.Remove("b")
	if _, ok := p.SelectVictim(&forbidden); ok {
		t.Fatal("sole forbidden key must yield no candidate")
	}
}

func TestWeight_ClearAndEmpty(t *testing.T) {
	t.Parallel()

	p := New[string]()
	if _, ok := p.SelectVictim(nil); ok {
		t.Fatal("empty policy must have no candidate")
	}
	p.Touch("a", acc(1, 1))
	p.Clear()
	if _, ok := p.SelectVictim(nil); ok {
		t.Fatal("cleared policy must have no candidate")
	}
}
