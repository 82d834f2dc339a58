// Package event implements named notification objects with a waiter set:
// post invokes every waiter synchronously under a snapshot of the waiter
// set taken at the start of the call, so a waiter may remove itself (or
// others) mid-iteration safely. Grounded on
// original_source/src/oroboro/oroboro.py's Event class.
package event

import (
	"errors"
	"fmt"
)

// ErrWaiterNotFound is returned by RemoveWaiter when the waiter is not
// currently registered.
var ErrWaiterNotFound = errors.New("event: waiter not registered")

// Waiter is invoked with no arguments when the event it is registered on
// posts.
type Waiter func()

// Poster is satisfied by both *Event and *ObserverEvent. Session-level code
// that must distinguish the two at runtime (spec §4.5, §9 Open Question 1)
// type-switches on the concrete type behind this interface rather than
// comparing against the Event type itself.
type Poster interface {
	Post(value any)
}

// nextID hands out process-unique Event ids, mirroring Handle's monotonic
// counter.
var nextID uint64

// Event is a named notification with a set of waiter callbacks.
type Event struct {
	id      uint64
	name    string
	value   any
	count   int
	keys []waiterKey
}

// waiterKey pairs a waiter with an opaque identity token so RemoveWaiter
// can find it again: Go function values are not comparable, so callers
// that intend to remove a waiter later should keep the token AddWaiter
// returns.
type waiterKey struct {
	token *Waiter
	fn    Waiter
}

// ObserverEvent is an Event whose posts are deferred to the end-of-step
// observer phase when scheduled through a Session (see package oroboro).
// It carries no additional behavior of its own; the tag is used by the
// scheduler to decide call_at vs call_observer_at / call_now vs
// call_observer_now.
type ObserverEvent struct {
	Event
}

// New creates a named Event.
func New(name string) *Event {
	id := nextID
	nextID++
	return &Event{id: id, name: name}
}

// NewObserver creates a named ObserverEvent.
func NewObserver(name string) *ObserverEvent {
	id := nextID
	nextID++
	return &ObserverEvent{Event: Event{id: id, name: name}}
}

// ID returns the event's process-unique identifier.
func (e *Event) ID() uint64 { return e.id }

// Name returns the event's name.
func (e *Event) Name() string { return e.name }

// Count returns the number of times Post has been called.
func (e *Event) Count() int { return e.count }

// Value returns the value passed to the most recent Post.
func (e *Event) Value() any { return e.value }

// AddWaiter registers w to be invoked on every future Post. It returns a
// token identifying this registration for later RemoveWaiter calls.
// AddWaiter is not idempotent: every call adds a separate registration
// with its own token, even for an identical function, since Go function
// values cannot be compared for equality. A function added twice runs
// twice on each Post until both tokens are removed.
func (e *Event) AddWaiter(w Waiter) *Waiter {
	token := &w
	e.keys = append(e.keys, waiterKey{token: token, fn: w})
	return token
}

// RemoveWaiter removes the waiter identified by token. It is an error to
// remove a token that is not currently registered (already removed, or
// never added to this event).
func (e *Event) RemoveWaiter(token *Waiter) error {
	for i, k := range e.keys {
		if k.token == token {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWaiterNotFound, e.name)
}

// Post increments Count, stores value, snapshots the current waiter set,
// and invokes each snapshotted waiter in registration order. Waiters may
// call RemoveWaiter (on themselves or others) during this iteration; the
// snapshot makes that safe. A waiter posting the same event recursively is
// permitted — it proceeds on its own fresh snapshot.
func (e *Event) Post(value any) {
	e.count++
	e.value = value

	snapshot := make([]waiterKey, len(e.keys))
	copy(snapshot, e.keys)

	for _, k := range snapshot {
		k.fn()
	}
}
