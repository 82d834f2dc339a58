package kernel_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/event"
	"github.com/oroboro-sim/kernel/kernel"
	"github.com/oroboro-sim/kernel/reason"
	"github.com/oroboro-sim/kernel/task"
	"github.com/oroboro-sim/kernel/te"
)

func newKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	cfg := kernel.DefaultConfig()
	k, err := kernel.New(&cfg)
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	return k
}

func TestStartRunAndLookup(t *testing.T) {
	k := newKernel(t)
	var ran bool

	k.Start("worker", func(y *task.Yielder) (any, error) {
		y.Yield(reason.NewTimeout(5, k.Session()))
		ran = true
		return nil, nil
	})

	k.RunForever()

	if !ran {
		t.Fatal("expected the started task to run to completion")
	}

	got, err := k.Task("worker")
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if got.Status() != task.Exited {
		t.Fatalf("status = %v, want Exited", got.Status())
	}

	if _, err := k.Task("missing"); err == nil {
		t.Fatal("expected ErrNoSuchTask for an unknown name")
	}
}

func TestAssertForwardsVerdictsToObserver(t *testing.T) {
	k := newKernel(t)
	sampler := event.New("sampler")

	expr := te.Pred("one", func(d te.Data) bool { return d["sample"] == 1 })
	detach := k.Assert(sampler, "test-assertion", expr)
	defer detach()

	k.Session().Loop().CallNow(func() { sampler.Post(1) })
	k.RunForever()
}
