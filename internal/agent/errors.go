package agent

import "errors"

var (
	// ErrNoPlan aborts a plan-and-solve run whose planner produced no
	// numbered steps.
	ErrNoPlan = errors.New("planner produced no steps")

	// ErrServiceUnavailable aborts a run after the configured number of
	// consecutive completion failures.
	ErrServiceUnavailable = errors.New("completion service unavailable")
)
