package te

import "errors"

// Sentinel errors for TE construction (spec §7 ExpressionError).
var (
	ErrInvalidRepeatBounds = errors.New("te: repeat bounds must satisfy 0 <= lo <= hi")
	ErrEmptyFirstof        = errors.New("te: Firstof requires at least one operand")
	ErrDuplicateName       = errors.New("te: name already registered")
)
