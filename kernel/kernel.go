package kernel

import (
	"fmt"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/loop"
	"github.com/oroboro-sim/kernel/observability"
	"github.com/oroboro-sim/kernel/oroboro"
	"github.com/oroboro-sim/kernel/task"
	"github.com/oroboro-sim/kernel/te"
)

// Option configures a Kernel after config-driven initialization, the same
// override-after-cold-start pattern the teacher's kernel.Option applies
// to agent/session/memory.
type Option func(*Kernel)

// WithObserver overrides the config-resolved observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.session.SetObserver(o) }
}

// Kernel is the single composed entry point for building and running a
// simulation: it owns the oroboro.Session (loop, root task, scoped
// current-task/current-reason context) and the TE subsystem used to
// assert behavior over the session's events.
type Kernel struct {
	session *oroboro.Session
	teCfg   te.Config
	tasks   map[string]*task.Task
}

// New creates a Kernel from configuration. The session is initialized
// from cfg.Session; functional options can then override any part of it
// for testing, mirroring the teacher's New(cfg, opts...) shape.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	sesh, err := oroboro.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("kernel: failed to create session: %w", err)
	}

	k := &Kernel{
		session: sesh,
		teCfg:   cfg.TE,
		tasks:   make(map[string]*task.Task),
	}

	for _, opt := range opts {
		opt(k)
	}

	return k, nil
}

// Session returns the underlying oroboro.Session for callers that need
// direct access to the loop or the scoped current-task context.
func (k *Kernel) Session() *oroboro.Session { return k.session }

// Start begins a named task under the session's root task and remembers
// it by name so it can be retrieved later via Task.
func (k *Kernel) Start(name string, fn task.StepFunc) *task.Task {
	t := k.session.Start(name, fn)
	k.tasks[name] = t
	return t
}

// Task looks up a task previously started via Start.
func (k *Kernel) Task(name string) (*task.Task, error) {
	t, ok := k.tasks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchTask, name)
	}
	return t, nil
}

// RunUntil runs the simulation loop through endtime.
func (k *Kernel) RunUntil(endtime loop.Time) { k.session.RunUntil(endtime) }

// RunForever runs the simulation loop until no work remains.
func (k *Kernel) RunForever() { k.session.RunForever() }

// Post and PostAt delegate to the underlying session, preserving its
// Normal/Observer dispatch behavior (spec §4.5, §9 Open Question 1).
func (k *Kernel) Post(ev event.Poster, value any)                     { k.session.Post(ev, value) }
func (k *Kernel) PostAt(when loop.Time, ev event.Poster, value any)    { k.session.PostAt(when, ev, value) }

// Assert attaches a continuous TE assertion of expr to sampler, with
// verdicts forwarded to the session's observer under source, and returns
// a detach function. This is the composed form of te.Always +
// te.ObserveMatches a caller would otherwise have to wire by hand.
func (k *Kernel) Assert(sampler *event.Event, source string, expr te.Expr) (detach func()) {
	onmatch, onfail := te.ObserveMatches(k.session.Observer(), source)
	return te.Always(sampler, k.session, expr, onmatch, onfail)
}
