// Package reason implements the suspension conditions a Task can yield on:
// NoReason, Timeout, WaitEvent, and Status. Grounded on
// original_source/src/oroboro/oroboro.py's Reason subclasses.
package reason

import (
	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
)

// Resumer is the narrow surface a Reason needs from its owning task: being
// told which of its (possibly several) yielded reasons fired. Task
// satisfies this implicitly; this package never imports the task package,
// which keeps task <-> reason free of an import cycle.
type Resumer interface {
	Step(firedIndex int)
}

// Reason is a condition a task yields on. Exactly one reason from a yield
// list is ever allowed to fire; the rest are cancelled by the stepper
// before the task resumes.
type Reason interface {
	// Schedule registers this reason with its backing source (the loop, an
	// Event, or a task's status event) so that, when the condition occurs,
	// it calls owner.Step(index) — unless cancelled first. Schedule is
	// called by the task stepper once, immediately after a yield.
	Schedule(owner Resumer, index int)
	// Cancel is idempotent and detaches the reason from its source. Safe
	// to call from any context, including from within another reason's
	// fire callback.
	Cancel()
	// Cancelled reports whether Cancel has been called.
	Cancelled() bool
}

// NoReason is a synthetic "immediate re-yield": it is never actually
// scheduled. A task stepper that sees NoReason in a yielded list skips it
// and re-enters the step function immediately, at the same logical time.
type NoReason struct{}

func (NoReason) Schedule(Resumer, int) {}
func (NoReason) Cancel()               {}
func (NoReason) Cancelled() bool       { return false }

// Clock is the narrow scheduling surface Timeout needs from the event loop.
type Clock interface {
	CallLater(delay loop.Time, cb func()) *loop.Handle
}

// Timeout fires after interval logical-time units have elapsed from the
// moment it is scheduled. Cancel leaves the underlying Handle resident in
// the loop's heap as a tombstone — schedule() already committed a Handle,
// and removing it from the heap is unnecessary since fire() re-checks the
// cancelled flag (spec §9 Open Question 3).
type Timeout struct {
	Interval  loop.Time
	clock     Clock
	cancelled bool
}

// NewTimeout creates a Timeout reason for the given interval (>= 0).
func NewTimeout(interval loop.Time, clock Clock) *Timeout {
	return &Timeout{Interval: interval, clock: clock}
}

func (t *Timeout) Schedule(owner Resumer, index int) {
	t.clock.CallLater(t.Interval, func() {
		if t.cancelled {
			return
		}
		owner.Step(index)
	})
}

func (t *Timeout) Cancel()         { t.cancelled = true }
func (t *Timeout) Cancelled() bool { return t.cancelled }

// WaitEvent resumes the owning task the next time ev posts.
type WaitEvent struct {
	Ev        *event.Event
	cancelled bool
	token     *event.Waiter
}

// NewWaitEvent creates a WaitEvent reason over ev.
func NewWaitEvent(ev *event.Event) *WaitEvent {
	return &WaitEvent{Ev: ev}
}

func (w *WaitEvent) Schedule(owner Resumer, index int) {
	w.token = w.Ev.AddWaiter(func() {
		if w.cancelled {
			return
		}
		owner.Step(index)
	})
}

func (w *WaitEvent) Cancel() {
	if w.cancelled {
		return
	}
	w.cancelled = true
	_ = w.Ev.RemoveWaiter(w.token)
}

func (w *WaitEvent) Cancelled() bool { return w.cancelled }

// Status resumes the owning task the next time the watched task's
// status-change event posts (i.e. the watched task transitions to EXITED
// or KILLED). It is built directly over an *event.Event — the watched
// task's StatusEvent() — reusing Event's own snapshot-post/addwaiter
// machinery rather than inventing a parallel notification mechanism.
type Status struct {
	StatusEvent *event.Event
	cancelled   bool
	token       *event.Waiter
}

// NewStatus creates a Status reason over a task's status event.
func NewStatus(statusEvent *event.Event) *Status {
	return &Status{StatusEvent: statusEvent}
}

func (s *Status) Schedule(owner Resumer, index int) {
	s.token = s.StatusEvent.AddWaiter(func() {
		if s.cancelled {
			return
		}
		owner.Step(index)
	})
}

func (s *Status) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	_ = s.StatusEvent.RemoveWaiter(s.token)
}

func (s *Status) Cancelled() bool { return s.cancelled }
