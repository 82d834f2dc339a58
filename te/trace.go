package te

import (
	"fmt"
	"strings"

	"github.com/oroboro-sim/kernel/loop"
)

// Verdict is the outcome of a trace: a match or a failure.
type Verdict int

const (
	Match Verdict = 0
	Fail  Verdict = 1
)

func (v Verdict) String() string {
	if v == Match {
		return "match"
	}
	return "fail"
}

// Trace is the bottom-up match/failure record described in spec §3:
// {label, start_cycle, end_cycle, start_time, end_time, status, data,
// children}. Cycles are 1-based counts of observer-event posts observed by
// the assertion.
type Trace struct {
	Label      string
	StartCycle int
	EndCycle   int
	StartTime  loop.Time
	EndTime    loop.Time
	Status     Verdict
	TraceData  Data
	SubTraces  []*Trace

	// InstanceID identifies which spawned matcher-tree instance produced
	// this trace (a fresh uuid.NewV7 per sampler post that started a new
	// instance — see te/sampler.go), so that logs from several
	// concurrently installed assertions, or several instances of the same
	// assertion started at different cycles, can be told apart.
	InstanceID string
}

func stampInstanceID(t *Trace, id string) {
	t.InstanceID = id
	for _, c := range t.SubTraces {
		stampInstanceID(c, id)
	}
}

// TraceDict returns the trace's data map (tetrace_dict).
func (t *Trace) TraceDict() Data { return t.TraceData }

// TraceCount returns the number of direct children (tetrace_count).
func (t *Trace) TraceCount() int { return len(t.SubTraces) }

// SCycle returns the 1-based start cycle (tetrace_scycle).
func (t *Trace) SCycle() int { return t.StartCycle }

// ECycle returns the 1-based end cycle (tetrace_ecycle).
func (t *Trace) ECycle() int { return t.EndCycle }

// STime returns the loop time at the start cycle (tetrace_stime).
func (t *Trace) STime() loop.Time { return t.StartTime }

// ETime returns the loop time at the end cycle (tetrace_etime).
func (t *Trace) ETime() loop.Time { return t.EndTime }

// Children returns the ordered list of sub-matcher traces (tetrace_children).
func (t *Trace) Children() []*Trace { return t.SubTraces }

// String renders a tree view of the trace. The exact pretty-printed format
// is explicitly OUT OF SCOPE (spec §1: "trace pretty-printing format" is an
// external-collaborator concern) — this is a minimal, unspecified default
// provided only so tetrace_print has something to call; callers that need
// a specific format should walk Children()/TraceDict() themselves.
func (t *Trace) String() string {
	var b strings.Builder
	t.render(&b, 0)
	return b.String()
}

func (t *Trace) render(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s (%d/%d) (%d/%d) %s\n",
		strings.Repeat("  ", depth), t.Label, t.StartCycle, t.EndCycle, t.StartTime, t.EndTime, t.Status)
	for _, c := range t.SubTraces {
		c.render(b, depth+1)
	}
}
