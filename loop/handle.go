// Package loop implements the stratified, time-ordered event loop that
// drives the simulation kernel: a min-priority queue of scheduled Handles
// keyed by (when, id), a ready list for the current time step, and a
// deferred observers list evaluated once all normal work at that step has
// quiesced.
package loop

// Time is logical simulation time. It is an integer in this implementation;
// callers that need other totally-ordered arithmetic types should not
// assume more than addition and ordering are defined on it.
type Time int64

// Kind tags a Handle as ordinary scheduled work or as an end-of-step
// observer callback.
type Kind int

const (
	Normal Kind = iota
	Observer
)

// Callback is the function a Handle invokes when it runs.
type Callback func()

// Handle is one queued callback: a logical time, a monotonic tie-breaker
// id, a cancelled flag, and a Normal/Observer tag. Handles compare by
// (When, ID) lexicographic order, never by When alone.
type Handle struct {
	When      Time
	ID        uint64
	Kind      Kind
	callback  Callback
	cancelled bool

	// heapIndex is the handle's position in the scheduled heap (-1 when
	// not in it), kept up to date by handleHeap's Push/Pop/Swap. Cancel
	// does not use it: a cancelled handle stays where it is as a tombstone.
	heapIndex int
}

// Cancelled reports whether the handle has been cancelled. A cancelled
// handle that is still resident in the heap or a ready/observers list is a
// tombstone: it is skipped when its turn to run comes up.
func (h *Handle) Cancelled() bool {
	return h.cancelled
}

// Cancel marks the handle so it will not run. Cancel is idempotent and safe
// to call regardless of where the handle currently resides (heap, ready
// list, or observers list) — the wave algorithm checks the flag at run time
// rather than removing the handle from wherever it sits.
func (h *Handle) Cancel() {
	h.cancelled = true
}

func (h *Handle) run() {
	if h.cancelled {
		return
	}
	h.callback()
}

// less implements the spec's (when, id) lexicographic ordering.
func (h *Handle) less(other *Handle) bool {
	if h.When != other.When {
		return h.When < other.When
	}
	return h.ID < other.ID
}
