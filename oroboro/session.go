// Package oroboro implements the Session: the owner of the event loop and
// the installed root pseudo-task, and the home of the scoped
// current-task/current-reason context the stepper protocol reads and
// restores. Adapted from the teacher's session/ package (its
// Config/DefaultConfig/Merge/New idiom and its uuid.NewV7 id-assignment
// pattern), re-targeted from "conversation history" to "owns the
// simulation." Grounded on original_source/src/oroboro/oroboro.py's
// Oroboro class.
package oroboro

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
	"github.com/oroboro-sim/kernel/observability"
	"github.com/oroboro-sim/kernel/reason"
	"github.com/oroboro-sim/kernel/task"
)

// Session owns the loop, installs a root task so currenttask() always
// resolves, and exposes the external interfaces named in spec §6.
type Session struct {
	runID string

	loop *loop.Loop
	root *task.Task

	exitOnError bool
	observer    observability.Observer

	currentTask   *task.Task
	currentReason reason.Reason
	reasonIndex   int
}

// New constructs a Session per cfg. Its RunID is a fresh UUIDv7, the same
// construction the teacher's session.NewMemorySession uses for session
// identity, here used to correlate observability events across one
// simulation run.
func New(cfg *Config) (*Session, error) {
	obs, err := observability.GetObserver(cfg.ObserverName)
	if err != nil {
		return nil, fmt.Errorf("oroboro: %w", err)
	}

	s := &Session{
		runID:       uuid.Must(uuid.NewV7()).String(),
		loop:        loop.New(),
		exitOnError: cfg.ExitOnError(),
		observer:    obs,
	}
	s.root = task.NewRoot("root")
	s.currentTask = s.root
	return s, nil
}

// RunID returns the session's unique run identifier.
func (s *Session) RunID() string { return s.runID }

// Loop returns the underlying event loop.
func (s *Session) Loop() *loop.Loop { return s.loop }

// CurrentTime returns the loop's current logical time.
func (s *Session) CurrentTime() loop.Time { return s.loop.Now() }

// CurrentTask returns whichever task is currently executing (the root
// pseudo-task if no user task is on the stack).
func (s *Session) CurrentTask() *task.Task { return s.currentTask }

// CurrentReason returns the reason that caused the current step, or nil
// outside of a resumption (e.g. during a task's very first entry).
func (s *Session) CurrentReason() reason.Reason { return s.currentReason }

// CurrentReasonIndex returns the index of CurrentReason() within the
// yield list that produced it.
func (s *Session) CurrentReasonIndex() int { return s.reasonIndex }

// task.Scheduler implementation.

func (s *Session) CallNow(cb func()) *loop.Handle          { return s.loop.CallNow(cb) }
func (s *Session) CallLater(delay loop.Time, cb func()) *loop.Handle {
	return s.loop.CallLater(delay, cb)
}
func (s *Session) Now() loop.Time                   { return s.loop.Now() }
func (s *Session) ExitOnError() bool                { return s.exitOnError }
func (s *Session) Observer() observability.Observer { return s.observer }

// SetObserver overrides the session's observer, for callers (e.g.
// kernel.WithObserver) that need to replace the config-resolved default
// after construction.
func (s *Session) SetObserver(o observability.Observer) { s.observer = o }

func (s *Session) SetCurrentTask(t *task.Task) func() {
	prev := s.currentTask
	s.currentTask = t
	return func() { s.currentTask = prev }
}

func (s *Session) SetCurrentReason(r reason.Reason, index int) func() {
	prevR, prevI := s.currentReason, s.reasonIndex
	s.currentReason, s.reasonIndex = r, index
	return func() { s.currentReason, s.reasonIndex = prevR, prevI }
}

// Start constructs a Task over fn, parented to the root task, and returns
// it immediately (construction schedules the task's first step via
// CallNow; it does not itself drive the loop). Callers follow Start with
// RunUntil/RunForever to actually execute the simulation, per spec §4.5.
func (s *Session) Start(name string, fn task.StepFunc) *task.Task {
	return task.New(s, s.root, name, fn)
}

// RunUntil runs the loop through endtime.
func (s *Session) RunUntil(endtime loop.Time) { s.loop.RunUntil(endtime) }

// RunForever runs the loop until no work remains.
func (s *Session) RunForever() { s.loop.RunForever() }

// Post schedules ev.Post(value) to run at the current time step, tagged
// Observer when ev is actually an *event.ObserverEvent so it is deferred to
// the end-of-step observer phase (spec §4.5). The retrieved original
// confuses `isinstance(Event, ObserverEvent)` (class vs. instance — always
// false) for this exact check; the type switch below is the corrected
// `isinstance(ev, ObserverEvent)` per spec §9 Open Question 1.
func (s *Session) Post(ev event.Poster, value any) {
	if _, ok := ev.(*event.ObserverEvent); ok {
		s.loop.CallObserverNow(func() { ev.Post(value) })
		return
	}
	s.loop.CallNow(func() { ev.Post(value) })
}

// PostAt is Post, scheduled for a specific time rather than now.
func (s *Session) PostAt(when loop.Time, ev event.Poster, value any) {
	if _, ok := ev.(*event.ObserverEvent); ok {
		s.loop.CallObserverAt(when, func() { ev.Post(value) })
		return
	}
	s.loop.CallAt(when, func() { ev.Post(value) })
}
