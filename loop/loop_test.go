package loop_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/loop"
)

func TestRunUntilPartial(t *testing.T) {
	// S3 — run_until partial.
	l := loop.New()
	var val int
	l.CallAt(10, func() { val = 99 })
	l.CallAt(20, func() { val = 101 })
	l.CallAt(30, func() { val = 103 })
	l.CallAt(40, func() { val = 105 })
	l.CallAt(50, func() { val = 107 })

	l.RunUntil(30)
	if val != 103 {
		t.Fatalf("after RunUntil(30): val = %d, want 103", val)
	}

	l.RunUntil(40)
	if val != 105 {
		t.Fatalf("after RunUntil(40): val = %d, want 105", val)
	}
}

func TestOrderedWaves(t *testing.T) {
	// S2 — ordered waves: normal handles run before observer handles at the
	// same time step, regardless of insertion order.
	l := loop.New()
	var trace []string

	l.CallObserverAt(10, func() { trace = append(trace, "checka") })
	l.CallAt(10, func() { trace = append(trace, "a") })
	l.CallObserverAt(20, func() { trace = append(trace, "checkb") })
	l.CallAt(20, func() { trace = append(trace, "b") })

	l.RunForever()

	want := []string{"a", "checka", "b", "checkb"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestHandleOrderingTieBreak(t *testing.T) {
	l := loop.New()
	var trace []int

	// Three handles at the same time; insertion order must win since ids
	// are assigned in creation order and the heap orders by (when, id).
	l.CallAt(5, func() { trace = append(trace, 1) })
	l.CallAt(5, func() { trace = append(trace, 2) })
	l.CallAt(5, func() { trace = append(trace, 3) })

	l.RunForever()

	want := []int{1, 2, 3}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestCancelledHandleSkipped(t *testing.T) {
	l := loop.New()
	ran := false
	h := l.CallAt(10, func() { ran = true })
	h.Cancel()

	l.RunForever()

	if ran {
		t.Fatal("cancelled handle ran")
	}
	if !h.Cancelled() {
		t.Fatal("Cancelled() should report true")
	}
}

func TestSubWaveFromCallNow(t *testing.T) {
	l := loop.New()
	var trace []string

	l.CallAt(10, func() {
		trace = append(trace, "first")
		l.CallNow(func() { trace = append(trace, "second") })
	})

	l.RunForever()

	want := []string{"first", "second"}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestNextWhen(t *testing.T) {
	l := loop.New()
	if _, ok := l.NextWhen(); ok {
		t.Fatal("empty loop should have no next when")
	}

	l.CallAt(42, func() {})
	when, ok := l.NextWhen()
	if !ok || when != 42 {
		t.Fatalf("NextWhen() = %d, %v; want 42, true", when, ok)
	}

	l.CallNow(func() {})
	when, ok = l.NextWhen()
	if !ok || when != l.Now() {
		t.Fatalf("NextWhen() with ready work should return now")
	}
}
