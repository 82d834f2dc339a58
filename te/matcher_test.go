package te_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
	"github.com/oroboro-sim/kernel/te"
)

type fakeClock struct{ t loop.Time }

func (c *fakeClock) Now() loop.Time { return c.t }

// TestAlternationMatchesEitherBranch drives "(ok+a+b) | (b+ok+a+c)" over
// two signal vectors, one satisfying each branch, mirroring the
// alternation scenario's shape: a single assertion that succeeds whichever
// arm supplies the full sequence.
func TestAlternationMatchesEitherBranch(t *testing.T) {
	expr := func() te.Expr {
		left := te.Concat(te.Concat(sym("ok", "ok"), sym("a", "a")), sym("b", "b"))
		right := te.Concat(te.Concat(te.Concat(sym("b", "b"), sym("ok", "ok")), sym("a", "a")), sym("c", "c"))
		return te.Alt(left, right)
	}

	run := func(signals []string) []*te.Trace {
		sampler := event.New("sampler")
		clock := &fakeClock{}
		var matches []*te.Trace
		te.Always(sampler, clock, expr(), func(tr *te.Trace) { matches = append(matches, tr) }, nil)
		for i, s := range signals {
			clock.t = loop.Time(i)
			sampler.Post(s)
		}
		return matches
	}

	leftMatches := run([]string{"ok", "a", "b"})
	if len(leftMatches) == 0 {
		t.Fatal("left branch: expected at least one match")
	}

	rightMatches := run([]string{"b", "ok", "a", "c"})
	if len(rightMatches) == 0 {
		t.Fatal("right branch: expected at least one match")
	}

	noMatches := run([]string{"x", "y", "z"})
	if len(noMatches) != 0 {
		t.Fatalf("unrelated signals: expected no matches, got %d", len(noMatches))
	}
}

// TestConjunctionOfBoundedRepeats exercises "(a + ok*(1,8)) & (ok*(1,8) +
// b)": both halves must conclude at the same cycle for the conjunction to
// hold.
func TestConjunctionOfBoundedRepeats(t *testing.T) {
	expr := te.Conj(
		te.Concat(sym("a", "a"), te.Repeat(sym("ok", "ok"), 1, 8)),
		te.Concat(te.Repeat(sym("ok", "ok"), 1, 8), sym("b", "b")),
	)

	sampler := event.New("sampler")
	clock := &fakeClock{}
	var matched, failed int
	te.Always(sampler, clock, expr,
		func(tr *te.Trace) { matched++ },
		func(tr *te.Trace) { failed++ },
	)

	for i, s := range []string{"a", "ok", "ok", "b"} {
		clock.t = loop.Time(i)
		sampler.Post(s)
	}

	if matched == 0 && failed == 0 {
		t.Fatal("expected the conjunction to reach a verdict")
	}
}

func TestRepeatZeroLowerBoundAllowsEmptyMatch(t *testing.T) {
	e := te.Repeat(sym("ok", "ok"), 0, 3)
	sampler := event.New("sampler")
	clock := &fakeClock{}
	var matches []*te.Trace
	te.Always(sampler, clock, e, func(tr *te.Trace) { matches = append(matches, tr) }, nil)

	sampler.Post("nope")
	if len(matches) == 0 {
		t.Fatal("expected the zero-repeat branch to match immediately")
	}
}

func TestOnceSuppressesSecondConclusion(t *testing.T) {
	e := te.Once(te.Alt(sym("a", "a"), sym("a", "a")))
	sampler := event.New("sampler")
	clock := &fakeClock{}
	var matches []*te.Trace
	te.Always(sampler, clock, e, func(tr *te.Trace) { matches = append(matches, tr) }, nil)

	sampler.Post("a")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want exactly 1 (Once suppresses the duplicate)", len(matches))
	}
}

// TestRepeatRequiresAtLeastLoReps is a regression test: Repeat(a, lo, hi)
// must not report Match until at least lo repetitions have landed, even
// though each individual repetition concludes Match on its own.
func TestRepeatRequiresAtLeastLoReps(t *testing.T) {
	e := te.Repeat(sym("ok", "ok"), 2, 3)
	sampler := event.New("sampler")
	clock := &fakeClock{}
	var matches []*te.Trace
	te.Always(sampler, clock, e, func(tr *te.Trace) { matches = append(matches, tr) }, nil)

	clock.t = 0
	sampler.Post("ok")
	if len(matches) != 0 {
		t.Fatalf("matches = %d after 1 rep (lo=2), want 0", len(matches))
	}

	clock.t = 1
	sampler.Post("ok")
	if len(matches) == 0 {
		t.Fatal("expected a match once the 2nd (lo-satisfying) repetition lands")
	}
}

// TestConjRequiresCommonEndCycle is a regression test: Conj (and Intersect,
// which shares conjNode) must only report Match when both sides conclude
// Match at the SAME end cycle, not merely when both sides matched at
// whatever (possibly different) cycle each concluded at.
func TestConjRequiresCommonEndCycle(t *testing.T) {
	expr := te.Conj(
		te.Repeat(sym("a", "a"), 2, 2),
		te.Repeat(sym("a", "a"), 3, 3),
	)

	sampler := event.New("sampler")
	clock := &fakeClock{}
	var matched, failed int
	te.Always(sampler, clock, expr,
		func(tr *te.Trace) { matched++ },
		func(tr *te.Trace) { failed++ },
	)

	for i, s := range []string{"a", "a", "a"} {
		clock.t = loop.Time(i)
		sampler.Post(s)
	}

	if matched != 0 {
		t.Fatalf("matched = %d, want 0 (sub-expressions conclude at different end cycles)", matched)
	}
	if failed == 0 {
		t.Fatal("expected a Fail verdict once both sides have concluded")
	}
}

func TestTEEventPostsOnMatch(t *testing.T) {
	sampler := event.New("sampler")
	clock := &fakeClock{}
	out := te.TEEvent(sampler, clock, sym("a", "a"))

	var fired bool
	out.AddWaiter(func() { fired = true })
	sampler.Post("a")

	if !fired {
		t.Fatal("expected the wrapped event to post on match")
	}
}
