package kernel

import "errors"

// ErrNoSuchTask is returned by Kernel.Task when no task with the given
// name was ever started in this run.
var ErrNoSuchTask = errors.New("kernel: no such task")
