package loop

import (
	"container/heap"
	"fmt"
	"strings"
)

// Loop is a little run loop using a heap to sort scheduled handles,
// grounded on original_source/src/Loop.py's BaseLoop. It owns its heap and
// lists exclusively — there is no concurrent producer; all calls must come
// from the single logical thread of control the simulation runs on.
type Loop struct {
	now Time

	scheduled handleHeap
	ready     []*Handle
	observers []*Handle

	nextID uint64
}

// New creates an empty Loop at time zero.
func New() *Loop {
	l := &Loop{}
	heap.Init(&l.scheduled)
	return l
}

// Now returns the loop's current logical time.
func (l *Loop) Now() Time { return l.now }

func (l *Loop) nextHandleID() uint64 {
	id := l.nextID
	l.nextID++
	return id
}

func (l *Loop) newHandle(when Time, kind Kind, cb Callback) *Handle {
	return &Handle{When: when, ID: l.nextHandleID(), Kind: kind, callback: cb, heapIndex: -1}
}

// CallAt puts a scheduled handle in the queue at the time specified.
func (l *Loop) CallAt(when Time, cb Callback) *Handle {
	h := l.newHandle(when, Normal, cb)
	heap.Push(&l.scheduled, h)
	return h
}

// CallLater puts a scheduled handle in the queue at now+delay.
func (l *Loop) CallLater(delay Time, cb func()) *Handle {
	return l.CallAt(l.now+delay, cb)
}

// CallObserverAt is like CallAt but tags the handle Observer.
func (l *Loop) CallObserverAt(when Time, cb Callback) *Handle {
	h := l.newHandle(when, Observer, cb)
	heap.Push(&l.scheduled, h)
	return h
}

// CallObserverLater is like CallLater but tags the handle Observer.
func (l *Loop) CallObserverLater(delay Time, cb Callback) *Handle {
	return l.CallObserverAt(l.now+delay, cb)
}

// CallNow appends directly to the ready list at the current time — it does
// NOT go through the heap, so it joins (or starts) the current wave.
func (l *Loop) CallNow(cb Callback) *Handle {
	h := l.newHandle(l.now, Normal, cb)
	l.ready = append(l.ready, h)
	return h
}

// CallObserverNow appends directly to the ready list, tagged Observer.
func (l *Loop) CallObserverNow(cb Callback) *Handle {
	h := l.newHandle(l.now, Observer, cb)
	l.ready = append(l.ready, h)
	return h
}

// NextWhen returns the time of the earliest pending work: now if the ready
// list is non-empty, else the top of the scheduled heap, else nothing.
func (l *Loop) NextWhen() (Time, bool) {
	if len(l.ready) > 0 {
		return l.now, true
	}
	if len(l.scheduled) > 0 {
		return l.scheduled[0].When, true
	}
	return 0, false
}

// RunOnce executes one iteration of the wave algorithm for all work whose
// when is <= endtime, per spec §4.1:
//
//  1. Drain every handle whose when <= endtime from the heap into ready,
//     advancing now to each drained handle's when as it is popped.
//  2. While ready is non-empty: snapshot the current ready list as a wave,
//     reset ready, then run each Normal handle in the wave (in insertion
//     order) and defer each Observer handle to the observers list. Running
//     a Normal handle may call CallNow/CallObserverNow, which populates the
//     next sub-wave at the same now.
//  3. Once ready is empty, snapshot and run the observers list once, in
//     insertion order. Observer callbacks must not schedule further work at
//     now; this is not enforced, only documented (see spec DESIGN NOTES).
//  4. Set now := endtime.
func (l *Loop) RunOnce(endtime Time) {
	for len(l.scheduled) > 0 {
		top := l.scheduled[0]
		if top.When > endtime {
			break
		}
		l.now = top.When
		h := heap.Pop(&l.scheduled).(*Handle)
		l.ready = append(l.ready, h)
	}

	for len(l.ready) > 0 {
		wave := l.ready
		l.ready = nil

		for _, h := range wave {
			if h.cancelled {
				continue
			}
			if h.Kind == Observer {
				l.observers = append(l.observers, h)
				continue
			}
			h.run()
		}
	}

	owave := l.observers
	l.observers = nil
	for _, h := range owave {
		h.run()
	}

	l.now = endtime
}

// RunUntil runs RunOnce repeatedly while the next pending work is at or
// before endtime.
func (l *Loop) RunUntil(endtime Time) {
	for {
		when, ok := l.NextWhen()
		if !ok || when > endtime {
			return
		}
		l.RunOnce(when)
	}
}

// RunForever runs RunOnce repeatedly until there is no pending work left.
func (l *Loop) RunForever() {
	for {
		when, ok := l.NextWhen()
		if !ok {
			return
		}
		l.RunOnce(when)
	}
}

// Dump renders the scheduled heap and ready list for debugging, grounded on
// Loop.py's dump().
func (l *Loop) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LOOP now:%d\n", l.now)
	fmt.Fprintf(&b, "LOOP heap:")
	for _, h := range l.scheduled {
		fmt.Fprintf(&b, " {when:%d id:%d}", h.When, h.ID)
	}
	fmt.Fprintf(&b, "\nLOOP ready:")
	for _, h := range l.ready {
		fmt.Fprintf(&b, " {when:%d id:%d}", h.When, h.ID)
	}
	b.WriteByte('\n')
	return b.String()
}
