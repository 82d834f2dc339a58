package task

import "github.com/oroboro-sim/kernel/observability"

// Event types emitted during task stepping.
const (
	EventBorn    observability.EventType = "task.born"
	EventStep    observability.EventType = "task.step"
	EventWaiting observability.EventType = "task.waiting"
	EventExited  observability.EventType = "task.exited"
	EventKilled  observability.EventType = "task.killed"
	EventError   observability.EventType = "task.error"
)
