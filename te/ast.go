// Package te implements the Temporal Expression AST and matcher engine:
// a regular-expression-like sequence assertion language evaluated
// sample-by-sample against an observer event. Grounded on spec §4.6/§4.7;
// no original_source/te.py exists in the retrieved pack (only the
// behavioral evidence in original_source/tests/test_te0.py survived), so
// semantics are derived directly from the specification and cross-checked
// against that test's stimulus/verdict vectors.
package te

import (
	"strconv"

	"github.com/oroboro-sim/kernel/loop"
)

// Data is the mutable per-match key-value map Pred functions read and
// write. On branching (Alt/Intersect/Repeat), each branch receives an
// independent copy, per spec §4.6.
type Data map[string]any

func (d Data) clone() Data {
	c := make(Data, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Expr is a node in the Temporal Expression AST: "polymorphic over {fmt,
// eval(context) -> matcher-task-builder}" per spec §3. It is immutable
// after construction; start() is this node's eval/matcher-task-builder —
// it instantiates a fresh matchNode rooted at startCycle/startTime, the
// "spawn a matcher tree" operation described in §4.7.
type Expr interface {
	Label() string
	start(startCycle int, startTime loop.Time, data Data) matchNode
}

// PredFunc is a leaf predicate: it inspects (and may write into) data and
// reports whether it holds for the current sample.
type PredFunc func(data Data) bool

type predExpr struct {
	label string
	fn    PredFunc
}

// Pred constructs a leaf expression. It matches at cycle c iff fn(data)
// returns true, and consumes exactly one sample.
func Pred(label string, fn PredFunc) Expr { return &predExpr{label: label, fn: fn} }

func (p *predExpr) Label() string { return p.label }
func (p *predExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return &predNode{expr: p, startCycle: startCycle, startTime: startTime, data: data}
}

type concatExpr struct{ a, b Expr }

// Concat builds `a + b`: matches [s..e] iff some m has a matching [s..m]
// and b matching [m+1..e].
func Concat(a, b Expr) Expr { return &concatExpr{a: a, b: b} }

func (c *concatExpr) Label() string { return "(" + c.a.Label() + "+" + c.b.Label() + ")" }
func (c *concatExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newConcatNode(c, startCycle, startTime, data)
}

type altExpr struct{ a, b Expr }

// Alt builds `a | b`: matches [s..e] iff a matches [s..e] OR b matches
// [s..e]; both may match simultaneously at the same e.
func Alt(a, b Expr) Expr { return &altExpr{a: a, b: b} }

func (a *altExpr) Label() string { return "(" + a.a.Label() + "|" + a.b.Label() + ")" }
func (a *altExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newAltNode(a, startCycle, startTime, data)
}

type conjExpr struct{ a, b Expr }

// Conj builds `a & b`: matches [s..e] iff a and b both match [s..e] —
// endpoints coincide on both ends.
func Conj(a, b Expr) Expr { return &conjExpr{a: a, b: b} }

func (c *conjExpr) Label() string { return "(" + c.a.Label() + "&" + c.b.Label() + ")" }
func (c *conjExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newConjNode(c, startCycle, startTime, data, false)
}

type intersectExpr struct{ a, b Expr }

// Intersect builds `a ^ b`: like Conj, but only the end cycle need
// coincide.
func Intersect(a, b Expr) Expr { return &intersectExpr{a: a, b: b} }

func (i *intersectExpr) Label() string { return "(" + i.a.Label() + "^" + i.b.Label() + ")" }
func (i *intersectExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newConjNode(&conjExpr{a: i.a, b: i.b}, startCycle, startTime, data, true)
}

type repeatExpr struct {
	a      Expr
	lo, hi int
}

// Repeat builds `a * (lo, hi)`: the concatenation of a repeated k times
// for k in [lo, hi]; any k that yields a match succeeds. Panics with
// ErrInvalidRepeatBounds if lo < 0 or hi < lo (spec §7 ExpressionError).
func Repeat(a Expr, lo, hi int) Expr {
	if lo < 0 || hi < lo {
		panic(ErrInvalidRepeatBounds)
	}
	return &repeatExpr{a: a, lo: lo, hi: hi}
}

func (r *repeatExpr) Label() string {
	return r.a.Label() + "*(" + strconv.Itoa(r.lo) + "," + strconv.Itoa(r.hi) + ")"
}
func (r *repeatExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newRepeatNode(r, startCycle, startTime, data)
}

type impliesExpr struct{ a, b Expr }

// Implies builds `a >> b`: if a matches [s..m], b must match [m+1..e]; if
// a fails at s, the implication trivially holds (reported as a match).
func Implies(a, b Expr) Expr { return &impliesExpr{a: a, b: b} }

func (i *impliesExpr) Label() string { return "(" + i.a.Label() + ">>" + i.b.Label() + ")" }
func (i *impliesExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newImpliesNode(i, startCycle, startTime, data)
}

type invertExpr struct{ a Expr }

// Invert builds `~a`: matches iff a fails at this start; fails iff a
// matches. An involution: ~~a behaves as a (spec §8 invariant 6).
func Invert(a Expr) Expr { return &invertExpr{a: a} }

func (i *invertExpr) Label() string { return "~" + i.a.Label() }
func (i *invertExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newInvertNode(i, startCycle, startTime, data)
}

type onceExpr struct{ a Expr }

// Once builds Once(a): like a, but after the first match at a given start
// cycle, suppresses further simultaneous alternative matches at that
// start.
func Once(a Expr) Expr { return &onceExpr{a: a} }

func (o *onceExpr) Label() string { return "Once(" + o.a.Label() + ")" }
func (o *onceExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newOnceNode(o, startCycle, startTime, data)
}

type firstofExpr struct{ ops []Expr }

// Firstof builds an ordered alternation: as soon as any operand matches,
// report it and suppress the rest at that start. Panics with
// ErrEmptyFirstof if ops is empty.
func Firstof(ops ...Expr) Expr {
	if len(ops) == 0 {
		panic(ErrEmptyFirstof)
	}
	return &firstofExpr{ops: ops}
}

func (f *firstofExpr) Label() string {
	s := "Firstof["
	for i, op := range f.ops {
		if i > 0 {
			s += ","
		}
		s += op.Label()
	}
	return s + "]"
}
func (f *firstofExpr) start(startCycle int, startTime loop.Time, data Data) matchNode {
	return newFirstofNode(f, startCycle, startTime, data)
}
