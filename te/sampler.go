package te

import (
	"github.com/google/uuid"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
)

// Clock is the minimal time source a supervisor needs: the current
// logical time, so concluded traces can be timestamped. oroboro.Session
// satisfies it.
type Clock interface {
	Now() loop.Time
}

// MatchFunc and FailFunc are invoked as running matcher instances
// conclude. Both may be nil.
type MatchFunc func(*Trace)
type FailFunc func(*Trace)

// supervisor is the "always" assertion driver described in spec §4.7: it
// watches sampler and, on every post, spawns a fresh matcher-tree
// instance of expr rooted at that cycle while continuing to feed the
// sample to every instance spawned at an earlier cycle that is still
// alive. Concluded traces (match or fail) are reported via onmatch/onfail
// as soon as the owning instance reaches a verdict; instances that
// conclude are then dropped.
type supervisor struct {
	sampler *event.Event
	clock   Clock
	expr    Expr
	onmatch MatchFunc
	onfail  FailFunc

	cycle     int
	instances []matchNode
	ids       []string
	token     *event.Waiter
}

// Always attaches a continuous assertion of expr to sampler and returns a
// detach function. Detaching stops spawning new instances and drops
// in-flight ones; it does not retroactively un-report past verdicts.
func Always(sampler *event.Event, clock Clock, expr Expr, onmatch MatchFunc, onfail FailFunc) (detach func()) {
	s := &supervisor{sampler: sampler, clock: clock, expr: expr, onmatch: onmatch, onfail: onfail}
	s.token = sampler.AddWaiter(s.onSample)
	return func() {
		_ = sampler.RemoveWaiter(s.token)
	}
}

func (s *supervisor) onSample() {
	s.cycle++
	when := s.clock.Now()

	s.instances = append(s.instances, s.expr.start(s.cycle, when, Data{"sample": s.sampler.Value()}))
	s.ids = append(s.ids, uuid.Must(uuid.NewV7()).String())

	stillAliveNodes := s.instances[:0]
	stillAliveIDs := s.ids[:0]
	for i, inst := range s.instances {
		id := s.ids[i]
		concluded, alive := inst.step(s.cycle, when)
		for _, t := range concluded {
			stampInstanceID(t, id)
			if t.Status == Match {
				if s.onmatch != nil {
					s.onmatch(t)
				}
			} else if s.onfail != nil {
				s.onfail(t)
			}
		}
		if alive {
			stillAliveNodes = append(stillAliveNodes, inst)
			stillAliveIDs = append(stillAliveIDs, id)
		}
	}
	s.instances = stillAliveNodes
	s.ids = stillAliveIDs
}

// TEEvent builds an event.Event that posts a Trace each time expr
// matches against sampler, letting a matched assertion itself become a
// waitable signal for task.Yielder.Yield(reason.NewWaitEvent(...)).
func TEEvent(sampler *event.Event, clock Clock, expr Expr) *event.Event {
	out := event.New("te:" + expr.Label())
	Always(sampler, clock, expr, func(t *Trace) { out.Post(t) }, nil)
	return out
}

// TEEval evaluates expr once against a single data sample, outside of any
// running sampler. It is the one-shot building block teeval(expr, data)
// describes: useful for predicates and operators that conclude within a
// single cycle; operators that need more than one sample to conclude
// (Concat, Repeat spanning multiple cycles, ...) will report Fail here
// since no further samples will ever arrive.
func TEEval(expr Expr, data Data) bool {
	node := expr.start(1, 0, data.clone())
	concluded, _ := node.step(1, 0)
	for _, t := range concluded {
		if t.Status == Match {
			return true
		}
	}
	return false
}
