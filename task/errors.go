package task

import "errors"

// Sentinel errors for task usage violations (spec §7 UsageError).
var (
	ErrAlreadyTerminal = errors.New("task: already in a terminal status")
)
