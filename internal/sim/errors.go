package sim

import "errors"

// ErrInvalidTimeDelta is returned by AdvanceTime for a negative delta.
var ErrInvalidTimeDelta = errors.New("invalid time delta")
