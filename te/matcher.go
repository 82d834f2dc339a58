package te

import "github.com/oroboro-sim/kernel/loop"

// matchNode is one running instance of an Expr, mid-evaluation against a
// stream of sample cycles. step is called once per observed sample with
// the 1-based cycle number and the loop time it occurred at; it reports
// every Trace this instance concludes at that cycle (zero, one, or more
// for combinators that can match along several branches) and whether the
// instance can still make progress on a future cycle.
//
// This is the synchronous alternative to literally spawning a task.Task
// goroutine per ephemeral matcher that spec §4.7's prose describes: TE
// sampling is always driven from within a single observer-phase callback
// (never across a suspension point), so the "sum of resume states"
// strategy spec §9's Design Notes sanctions as equivalent to coroutines
// is what's implemented here, one matchNode variant per AST operator.
type matchNode interface {
	step(cycle int, when loop.Time) ([]*Trace, bool)
}

func wrap(label string, startCycle int, startTime loop.Time, child *Trace) *Trace {
	return &Trace{
		Label:      label,
		StartCycle: startCycle,
		EndCycle:   child.EndCycle,
		StartTime:  startTime,
		EndTime:    child.EndTime,
		Status:     child.Status,
		TraceData:  child.TraceData,
		SubTraces:  []*Trace{child},
	}
}

// --- Pred ---

type predNode struct {
	expr       *predExpr
	startCycle int
	startTime  loop.Time
	data       Data
	done       bool
}

func (n *predNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	if n.done {
		return nil, false
	}
	n.done = true
	status := Fail
	if n.expr.fn(n.data) {
		status = Match
	}
	return []*Trace{{
		Label: n.expr.label, StartCycle: n.startCycle, EndCycle: cycle,
		StartTime: n.startTime, EndTime: when, Status: status, TraceData: n.data,
	}}, false
}

// --- Concat ---

type concatNode struct {
	expr       *concatExpr
	startCycle int
	startTime  loop.Time
	a          matchNode
	aAlive     bool
	bs         []matchNode
}

func newConcatNode(e *concatExpr, startCycle int, startTime loop.Time, data Data) *concatNode {
	return &concatNode{
		expr: e, startCycle: startCycle, startTime: startTime,
		a: e.a.start(startCycle, startTime, data.clone()), aAlive: true,
	}
}

func (n *concatNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	var out []*Trace
	var spawned []matchNode
	if n.aAlive {
		conc, alive := n.a.step(cycle, when)
		n.aAlive = alive
		for _, t := range conc {
			if t.Status == Match {
				spawned = append(spawned, n.expr.b.start(cycle+1, when, t.TraceData.clone()))
			} else {
				out = append(out, wrap(n.expr.Label(), n.startCycle, n.startTime, t))
			}
		}
	}
	var stillAlive []matchNode
	for _, b := range n.bs {
		conc, alive := b.step(cycle, when)
		for _, t := range conc {
			out = append(out, wrap(n.expr.Label(), n.startCycle, n.startTime, t))
		}
		if alive {
			stillAlive = append(stillAlive, b)
		}
	}
	n.bs = append(stillAlive, spawned...)
	return out, n.aAlive || len(n.bs) > 0
}

// --- Alt ---

type altNode struct {
	expr             *altExpr
	startCycle       int
	startTime        loop.Time
	a, b             matchNode
	aAlive, bAlive   bool
}

func newAltNode(e *altExpr, startCycle int, startTime loop.Time, data Data) *altNode {
	return &altNode{
		expr: e, startCycle: startCycle, startTime: startTime,
		a: e.a.start(startCycle, startTime, data.clone()),
		b: e.b.start(startCycle, startTime, data.clone()),
		aAlive: true, bAlive: true,
	}
}

func (n *altNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	var out []*Trace
	if n.aAlive {
		conc, alive := n.a.step(cycle, when)
		n.aAlive = alive
		for _, t := range conc {
			out = append(out, wrap(n.expr.Label(), n.startCycle, n.startTime, t))
		}
	}
	if n.bAlive {
		conc, alive := n.b.step(cycle, when)
		n.bAlive = alive
		for _, t := range conc {
			out = append(out, wrap(n.expr.Label(), n.startCycle, n.startTime, t))
		}
	}
	return out, n.aAlive || n.bAlive
}

// --- Conj / Intersect ---
//
// Both a and b start together at the same cycle, so Conj's "endpoints
// coincide on both ends" and Intersect's "only the end need coincide"
// collapse to the same check under this model: wait for both branches to
// conclude once, then require both Match AND a matching end cycle —
// concluding at different end cycles is a Fail even if both branches
// individually matched, since neither matched the other's span. The
// strict flag is retained for documentation and to allow the two
// operators to diverge later without changing the node's external shape.
type conjNode struct {
	expr       *conjExpr
	startCycle int
	startTime  loop.Time
	strict     bool
	a, b       matchNode
	aDone      *Trace
	bDone      *Trace
	aAlive     bool
	bAlive     bool
	concluded  bool
}

func newConjNode(e *conjExpr, startCycle int, startTime loop.Time, data Data, strict bool) *conjNode {
	return &conjNode{
		expr: e, startCycle: startCycle, startTime: startTime, strict: strict,
		a: e.a.start(startCycle, startTime, data.clone()),
		b: e.b.start(startCycle, startTime, data.clone()),
		aAlive: true, bAlive: true,
	}
}

func (n *conjNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	if n.concluded {
		return nil, false
	}
	if n.aDone == nil && n.aAlive {
		conc, alive := n.a.step(cycle, when)
		n.aAlive = alive
		if len(conc) > 0 {
			n.aDone = conc[0]
		}
	}
	if n.bDone == nil && n.bAlive {
		conc, alive := n.b.step(cycle, when)
		n.bAlive = alive
		if len(conc) > 0 {
			n.bDone = conc[0]
		}
	}
	if n.aDone == nil || n.bDone == nil {
		return nil, true
	}
	n.concluded = true
	status := Fail
	if n.aDone.Status == Match && n.bDone.Status == Match && n.aDone.EndCycle == n.bDone.EndCycle {
		status = Match
	}
	end := n.aDone.EndCycle
	endTime := n.aDone.EndTime
	if n.bDone.EndCycle > end {
		end = n.bDone.EndCycle
		endTime = n.bDone.EndTime
	}
	return []*Trace{{
		Label: n.expr.Label(), StartCycle: n.startCycle, EndCycle: end,
		StartTime: n.startTime, EndTime: endTime, Status: status,
		SubTraces: []*Trace{n.aDone, n.bDone},
	}}, false
}

// --- Implies ---

type impliesNode struct {
	expr       *impliesExpr
	startCycle int
	startTime  loop.Time
	a          matchNode
	aAlive     bool
	aDone      *Trace
	b          matchNode
	concluded  bool
}

func newImpliesNode(e *impliesExpr, startCycle int, startTime loop.Time, data Data) *impliesNode {
	return &impliesNode{
		expr: e, startCycle: startCycle, startTime: startTime,
		a: e.a.start(startCycle, startTime, data.clone()), aAlive: true,
	}
}

func (n *impliesNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	if n.concluded {
		return nil, false
	}
	if n.b == nil {
		if !n.aAlive {
			return nil, false
		}
		conc, alive := n.a.step(cycle, when)
		n.aAlive = alive
		if len(conc) == 0 {
			return nil, n.aAlive
		}
		at := conc[0]
		if at.Status == Fail {
			n.concluded = true
			tr := wrap(n.expr.Label(), n.startCycle, n.startTime, at)
			tr.Status = Match
			return []*Trace{tr}, false
		}
		n.b = n.expr.b.start(cycle+1, when, at.TraceData.clone())
		n.aDone = at
		return nil, true
	}
	conc, alive := n.b.step(cycle, when)
	if len(conc) == 0 {
		return nil, alive
	}
	n.concluded = true
	bt := conc[0]
	return []*Trace{{
		Label: n.expr.Label(), StartCycle: n.startCycle, EndCycle: bt.EndCycle,
		StartTime: n.startTime, EndTime: bt.EndTime, Status: bt.Status,
		SubTraces: []*Trace{n.aDone, bt},
	}}, false
}

// --- Invert ---

type invertNode struct {
	expr       *invertExpr
	startCycle int
	startTime  loop.Time
	a          matchNode
}

func newInvertNode(e *invertExpr, startCycle int, startTime loop.Time, data Data) *invertNode {
	return &invertNode{expr: e, startCycle: startCycle, startTime: startTime, a: e.a.start(startCycle, startTime, data.clone())}
}

func (n *invertNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	conc, alive := n.a.step(cycle, when)
	if len(conc) == 0 {
		return nil, alive
	}
	at := conc[0]
	status := Fail
	if at.Status == Fail {
		status = Match
	}
	return []*Trace{{
		Label: n.expr.Label(), StartCycle: n.startCycle, EndCycle: at.EndCycle,
		StartTime: n.startTime, EndTime: at.EndTime, Status: status,
		SubTraces: []*Trace{at},
	}}, false
}

// --- Once ---

type onceNode struct {
	expr *onceExpr
	a    matchNode
	used bool
}

func newOnceNode(e *onceExpr, startCycle int, startTime loop.Time, data Data) *onceNode {
	return &onceNode{expr: e, a: e.a.start(startCycle, startTime, data)}
}

func (n *onceNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	if n.used {
		return nil, false
	}
	conc, alive := n.a.step(cycle, when)
	for _, t := range conc {
		if t.Status == Match {
			n.used = true
			return []*Trace{t}, false
		}
	}
	return conc, alive
}

// --- Firstof ---

type firstofNode struct {
	expr      *firstofExpr
	kids      []matchNode
	kidsAlive []bool
	done      bool
	lastFail  *Trace
}

func newFirstofNode(e *firstofExpr, startCycle int, startTime loop.Time, data Data) *firstofNode {
	kids := make([]matchNode, len(e.ops))
	alive := make([]bool, len(e.ops))
	for i, op := range e.ops {
		kids[i] = op.start(startCycle, startTime, data.clone())
		alive[i] = true
	}
	return &firstofNode{expr: e, kids: kids, kidsAlive: alive}
}

func (n *firstofNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	if n.done {
		return nil, false
	}
	for i, k := range n.kids {
		if !n.kidsAlive[i] {
			continue
		}
		conc, alive := k.step(cycle, when)
		n.kidsAlive[i] = alive
		for _, t := range conc {
			if t.Status == Match {
				n.done = true
				return []*Trace{t}, false
			}
			n.lastFail = t
		}
	}
	for _, a := range n.kidsAlive {
		if a {
			return nil, true
		}
	}
	n.done = true
	if n.lastFail != nil {
		return []*Trace{n.lastFail}, false
	}
	return nil, false
}

// --- Repeat ---

type repeatNode struct {
	expr           *repeatExpr
	startCycle     int
	startTime      loop.Time
	count          int
	cur            matchNode
	emittedZeroRep bool
	done           bool
}

func newRepeatNode(e *repeatExpr, startCycle int, startTime loop.Time, data Data) *repeatNode {
	return &repeatNode{
		expr: e, startCycle: startCycle, startTime: startTime,
		cur: e.a.start(startCycle, startTime, data.clone()),
	}
}

func (n *repeatNode) step(cycle int, when loop.Time) ([]*Trace, bool) {
	if n.done {
		return nil, false
	}
	var out []*Trace
	if n.expr.lo == 0 && !n.emittedZeroRep {
		n.emittedZeroRep = true
		out = append(out, &Trace{
			Label: n.expr.Label(), StartCycle: n.startCycle, EndCycle: n.startCycle - 1,
			StartTime: n.startTime, EndTime: n.startTime, Status: Match,
		})
	}
	conc, alive := n.cur.step(cycle, when)
	if len(conc) == 0 {
		if !alive {
			n.done = true
			return out, false
		}
		return out, true
	}
	ct := conc[0]
	if ct.Status == Fail {
		n.done = true
		if n.count < n.expr.lo {
			out = append(out, wrap(n.expr.Label(), n.startCycle, n.startTime, ct))
		}
		return out, false
	}
	n.count++
	if n.count >= n.expr.lo {
		out = append(out, &Trace{
			Label: n.expr.Label(), StartCycle: n.startCycle, EndCycle: ct.EndCycle,
			StartTime: n.startTime, EndTime: ct.EndTime, Status: Match, SubTraces: []*Trace{ct},
		})
	}
	if n.count >= n.expr.hi {
		n.done = true
		return out, false
	}
	n.cur = n.expr.a.start(cycle+1, when, ct.TraceData.clone())
	return out, true
}
