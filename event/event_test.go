package event_test

import (
	"testing"

	"github.com/oroboro-sim/kernel/event"
)

func TestPostCountIndependentOfWaiterChurn(t *testing.T) {
	ev := event.New("e")

	var calls int
	token := ev.AddWaiter(func() { calls++ })

	ev.Post(nil)
	ev.Post(nil)

	if err := ev.RemoveWaiter(token); err != nil {
		t.Fatalf("RemoveWaiter: %v", err)
	}

	ev.Post(nil)

	if ev.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", ev.Count())
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRemoveAbsentWaiterErrors(t *testing.T) {
	ev := event.New("e")
	tok := ev.AddWaiter(func() {})
	if err := ev.RemoveWaiter(tok); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := ev.RemoveWaiter(tok); err == nil {
		t.Fatal("expected error removing an absent waiter")
	}
}

func TestWaiterCanRemoveItselfDuringPost(t *testing.T) {
	ev := event.New("e")
	var calls int
	var token *event.Waiter

	token = ev.AddWaiter(func() {
		calls++
		_ = ev.RemoveWaiter(token)
	})

	ev.Post(nil)
	ev.Post(nil)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (waiter should have removed itself)", calls)
	}
}

func TestPostStoresValue(t *testing.T) {
	ev := event.New("e")
	ev.Post(7)
	if ev.Value() != 7 {
		t.Fatalf("Value() = %v, want 7", ev.Value())
	}
	ev.Post("later")
	if ev.Value() != "later" {
		t.Fatalf("Value() = %v, want later", ev.Value())
	}
}
