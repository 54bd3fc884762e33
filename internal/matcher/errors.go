package matcher

import "errors"

// Error taxonomy for the matching core. InvalidInput is surfaced before any
// pass runs; Cancelled is surfaced between passes; InvariantViolation is
// fatal and aborts reconciliation mid-cascade.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrCancelled          = errors.New("reconciliation cancelled")
	ErrInvariantViolation = errors.New("internal invariant violation")
)
