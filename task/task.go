// Package task implements the resumable step function and stepper
// protocol described in spec §4.4, grounded on
// original_source/src/oroboro/oroboro.py's Task/runstep.
//
// Go has no native generator or stackless-coroutine construct, and the
// teacher repo doesn't implement one either, so the resumable step
// function is built as a goroutine blocked on a channel handshake at every
// Yield call — the same suspend/resume shape as the G{blockChan} toy
// scheduler pattern, scaled up to carry yield/resume payloads. The loop
// remains logically single-threaded: at most one of {the driving Step
// call, the task's goroutine} is ever running at a time, the rest is
// always parked on a channel receive.
package task

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
	"github.com/oroboro-sim/kernel/observability"
	"github.com/oroboro-sim/kernel/reason"
)

// Status is a Task's position in the BORN -> RUNNING -> WAITING <-> RUNNING
// -> {EXITED, KILLED} state machine.
type Status int

const (
	Born Status = iota
	Running
	Waiting
	Exited
	Killed
)

func (s Status) String() string {
	switch s {
	case Born:
		return "BORN"
	case Running:
		return "RUNNING"
	case Waiting:
		return "WAITING"
	case Exited:
		return "EXITED"
	case Killed:
		return "KILLED"
	default:
		return "UNKNOWN"
	}
}

// Scheduler is the narrow surface a Task needs from its owning session: a
// way to schedule its first step at the current time, the exit-on-error
// policy, an observer sink, and the current-task/current-reason context
// slots the stepper must save and restore around re-entering user code.
// oroboro.Session implements this interface implicitly.
type Scheduler interface {
	CallNow(cb func()) *loop.Handle
	Now() loop.Time
	ExitOnError() bool
	Observer() observability.Observer
	SetCurrentTask(t *Task) (restore func())
	SetCurrentReason(r reason.Reason, index int) (restore func())
}

// StepFunc is a resumable step function. It is handed a Yielder it uses to
// suspend on a list of Reasons; it returns a terminal result and error when
// it has nothing left to do.
type StepFunc func(y *Yielder) (result any, err error)

type yieldMsg struct {
	reasons []reason.Reason
	done    bool
	result  any
	err     error
}

type resumeMsg struct {
	firedIndex int
}

// Task is a resumable step function driven by the stepper protocol.
type Task struct {
	id        uint64
	name      string
	status    Status
	parent    *Task
	scheduler Scheduler
	stepFn    StepFunc

	reasons []reason.Reason
	result  any
	err     error

	statusEvent *event.Event

	started     bool
	toMain      chan yieldMsg
	toGoroutine chan resumeMsg
}

var nextTaskID uint64

func allocID() uint64 {
	id := nextTaskID
	nextTaskID++
	return id
}

// New constructs a Task over fn and schedules its first step ("the
// kicker") via CallNow, per spec §4.4. parent is recorded exactly as
// passed (nil for a task with no parent); Session.Start passes the root
// task. The root task itself is built by NewRoot, not New.
func New(scheduler Scheduler, parent *Task, name string, fn StepFunc) *Task {
	t := &Task{
		id:          allocID(),
		name:        name,
		status:      Born,
		parent:      parent,
		scheduler:   scheduler,
		stepFn:      fn,
		statusEvent: event.New("task-status:" + name),
		toMain:      make(chan yieldMsg),
		toGoroutine: make(chan resumeMsg),
	}
	emit(scheduler, EventBorn, t, nil)
	scheduler.CallNow(func() { t.Step(-1) })
	return t
}

// NewRoot constructs the session's root pseudo-task: status RUNNING, no
// parent, never stepped. It exists purely so CurrentTask() always resolves
// to something, even before any user task has started.
func NewRoot(name string) *Task {
	return &Task{
		id:          allocID(),
		name:        name,
		status:      Running,
		statusEvent: event.New("task-status:" + name),
	}
}

func (t *Task) ID() uint64              { return t.id }
func (t *Task) Name() string            { return t.name }
func (t *Task) Status() Status          { return t.status }
func (t *Task) Parent() *Task           { return t.parent }
func (t *Task) Result() any             { return t.result }
func (t *Task) Err() error              { return t.err }
func (t *Task) StatusEvent() *event.Event { return t.statusEvent }

// Yielder is the handle a StepFunc uses to suspend itself on a set of
// Reasons and to read its own execution context.
type Yielder struct {
	t *Task
}

// Self returns the task this Yielder belongs to.
func (y *Yielder) Self() *Task { return y.t }

// Now returns the loop's current logical time.
func (y *Yielder) Now() loop.Time { return y.t.scheduler.Now() }

// Yield suspends the calling step function until one of reasons fires, and
// returns the index into reasons of whichever one did. A reasons list
// containing a reason.NoReason anywhere is treated as a transparent
// "re-enter immediately" (spec §9 Open Question 2): the stepper schedules
// none of the reasons in that list, not even the real ones, and Yield
// returns 0 at once, at the same logical time, without any reason having
// fired.
func (y *Yielder) Yield(reasons ...reason.Reason) int {
	t := y.t
	t.toMain <- yieldMsg{reasons: reasons}
	msg := <-t.toGoroutine
	return msg.firedIndex
}

func containsNoReason(reasons []reason.Reason) bool {
	for _, r := range reasons {
		if _, ok := r.(reason.NoReason); ok {
			return true
		}
	}
	return false
}

// Step is the stepper protocol entry point (Resumer.Step): it is called
// once per wakeup, with firedIndex identifying which of the task's current
// reasons fired (-1 for the very first entry, when there is no prior
// reason list).
func (t *Task) Step(firedIndex int) {
	restoreTask := t.scheduler.SetCurrentTask(t)
	defer restoreTask()

	var fired reason.Reason
	for i, r := range t.reasons {
		if i == firedIndex {
			fired = r
		}
		r.Cancel()
	}
	t.reasons = nil
	t.status = Running

	restoreReason := t.scheduler.SetCurrentReason(fired, firedIndex)

	var msg yieldMsg
	for {
		if !t.started {
			t.started = true
			go t.run()
		} else {
			t.toGoroutine <- resumeMsg{firedIndex: firedIndex}
		}
		msg = <-t.toMain
		if !msg.done && containsNoReason(msg.reasons) {
			// Transparent skip: re-enter the step function immediately, at
			// the same logical time, without actually scheduling anything.
			firedIndex = 0
			continue
		}
		break
	}
	restoreReason()

	emit(t.scheduler, EventStep, t, nil)

	if msg.done {
		t.finish(msg)
		return
	}

	t.reasons = msg.reasons
	t.status = Waiting
	for i, r := range t.reasons {
		r.Schedule(t, i)
	}
	emit(t.scheduler, EventWaiting, t, map[string]any{"reasons": len(t.reasons)})
}

func (t *Task) finish(msg yieldMsg) {
	if msg.err != nil {
		t.err = msg.err
		emit(t.scheduler, EventError, t, map[string]any{"error": msg.err.Error()})
		if t.scheduler.ExitOnError() {
			fmt.Fprintf(os.Stderr, "fatal: task %d (%s) error: %v\n", t.id, t.name, msg.err)
			os.Exit(1)
		}
	}
	t.result = msg.result
	t.status = Exited
	emit(t.scheduler, EventExited, t, nil)
	t.endTask()
}

func (t *Task) run() {
	defer func() {
		if r := recover(); r != nil {
			t.toMain <- yieldMsg{done: true, err: fmt.Errorf("task %d (%s) panicked: %v", t.id, t.name, r)}
		}
	}()
	y := &Yielder{t: t}
	result, err := t.stepFn(y)
	t.toMain <- yieldMsg{done: true, result: result, err: err}
}

// Kill forcibly terminates the task: cancels all live reasons, marks it
// KILLED, and fires its status waiters. Killing an already-terminal task
// is a usage error.
func (t *Task) Kill() error {
	if t.status == Exited || t.status == Killed {
		return fmt.Errorf("%w: task %d (%s)", ErrAlreadyTerminal, t.id, t.name)
	}
	for _, r := range t.reasons {
		r.Cancel()
	}
	t.reasons = nil
	t.status = Killed
	emit(t.scheduler, EventKilled, t, nil)
	t.endTask()
	return nil
}

// endTask fires every waiter registered on this task's status event (i.e.
// every Status(task) reason elsewhere waiting on this task), under the
// same snapshot-before-iterate discipline Event.Post already provides.
func (t *Task) endTask() {
	t.statusEvent.Post(t.status)
}

func emit(s Scheduler, et observability.EventType, t *Task, data map[string]any) {
	obs := s.Observer()
	if obs == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["task_id"] = t.id
	data["task_name"] = t.name
	data["status"] = t.status.String()
	data["sim_time"] = int64(s.Now())
	obs.OnEvent(context.Background(), observability.Event{
		Type:      et,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "task",
		Data:      data,
	})
}
