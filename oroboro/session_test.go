package oroboro_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
	"github.com/oroboro-sim/kernel/oroboro"
	"github.com/oroboro-sim/kernel/reason"
	"github.com/oroboro-sim/kernel/task"
)

func newSession(t *testing.T) *oroboro.Session {
	t.Helper()
	cfg := oroboro.DefaultConfig()
	s, err := oroboro.New(&cfg)
	if err != nil {
		t.Fatalf("oroboro.New: %v", err)
	}
	return s
}

func TestRootTaskAlwaysCurrent(t *testing.T) {
	s := newSession(t)
	if s.CurrentTask() == nil {
		t.Fatal("CurrentTask() should resolve before any user task starts")
	}
	if s.CurrentTask().Status() != task.Running {
		t.Fatalf("root task status = %v, want Running", s.CurrentTask().Status())
	}
}

func TestStartAndRunForever(t *testing.T) {
	s := newSession(t)
	var x int

	s.Start("s1", func(y *task.Yielder) (any, error) {
		y.Yield(reason.NewTimeout(10, s))
		x = 99
		return nil, nil
	})

	s.RunForever()

	if x != 99 {
		t.Fatalf("x = %d, want 99", x)
	}
	if s.CurrentTime() != 10 {
		t.Fatalf("CurrentTime() = %d, want 10", s.CurrentTime())
	}
}

func TestPostDeferredObserverEventsToObserverPhase(t *testing.T) {
	s := newSession(t)
	var trace []string

	normalEv := event.New("normal")
	obsEv := event.NewObserver("obs")

	normalEv.AddWaiter(func() { trace = append(trace, "normal") })
	obsEv.AddWaiter(func() { trace = append(trace, "observer") })

	s.Loop().CallAt(10, func() {
		s.Post(obsEv, nil)
		s.Post(normalEv, nil)
	})

	s.RunForever()

	want := []string{"normal", "observer"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestPostAtSchedulesForFutureTime(t *testing.T) {
	s := newSession(t)
	var when loop.Time = -1

	ev := event.New("e")
	ev.AddWaiter(func() { when = s.CurrentTime() })

	s.PostAt(25, ev, nil)
	s.RunForever()

	if when != 25 {
		t.Fatalf("when = %d, want 25", when)
	}
}
