package vesting

import (
	"errors"
	"fmt"

	"github.com/xraph/vesting/id"
)

// Sentinel errors for common failure scenarios.
var (
	// Creation input errors. Each zero-identity condition gets its own
	// sentinel so callers can tell which argument was rejected.
	ErrInvalidToken       = errors.New("vesting: invalid token")
	ErrInvalidSource      = errors.New("vesting: invalid source")
	ErrInvalidDestination = errors.New("vesting: invalid destination")

	// ErrInvalidSchedule covers a rejected tranche plan: empty list, a zero
	// amount or release time, out-of-order release times, or arithmetic
	// overflow of the committed total.
	ErrInvalidSchedule = errors.New("vesting: invalid schedule")

	// ErrScheduleNotFound is returned for ids that were never issued.
	// A fully released schedule is still found; its tranches are all zero.
	ErrScheduleNotFound = errors.New("vesting: schedule not found")

	// ErrUnauthorized is returned when the caller is not the schedule's
	// current owner. A schedule whose owner is the zero address fails
	// authorization for every caller.
	ErrUnauthorized = errors.New("vesting: unauthorized")

	// ErrNoUnlocksAvailable is the expected, non-exceptional outcome of an
	// unlock call before the next tranche matures or after full release.
	ErrNoUnlocksAvailable = errors.New("vesting: no unlocks available")

	// ErrTransferFailed is returned when the value ledger rejects the pull
	// during creation. The attempted schedule leaves no trace.
	ErrTransferFailed = errors.New("vesting: transfer failed")

	// Store errors
	ErrStoreClosed     = errors.New("vesting: store is closed")
	ErrMigrationFailed = errors.New("vesting: migration failed")
)

// InvariantError reports a divergence between the engine's internal
// accounting and the external value ledger: a push failed after the matured
// tranches were already zeroed. Creation-time accounting guarantees the
// escrowed balance covers every unlock, so this cannot occur in a healthy
// deployment. It is unrecoverable for the affected call and must never be
// retried; it deliberately does not match any recoverable sentinel above.
type InvariantError struct {
	Op  string
	ID  id.ScheduleID
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("vesting: accounting invariant violated during %s of schedule %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying ledger error.
func (e *InvariantError) Unwrap() error { return e.Err }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

// IsInvalidInput returns true if the error is a creation-time validation
// failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidSource) ||
		errors.Is(err, ErrInvalidDestination) ||
		errors.Is(err, ErrInvalidSchedule)
}

// IsFatal returns true if the error is an unrecoverable accounting
// divergence rather than a normal, recoverable failure.
func IsFatal(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
