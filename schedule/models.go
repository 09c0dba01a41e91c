// Package schedule defines the vesting schedule data model.
package schedule

import (
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// Status describes a schedule's lifecycle position with respect to value
// movement. A fully released schedule stays in the store forever; its
// owner and destination remain mutable (a no-op in practice).
type Status string

const (
	StatusActive        Status = "active"
	StatusFullyReleased Status = "fully_released"
)

// Tranche is one (release time, amount) entry in a schedule's release plan.
// ReleaseTime is immutable after creation; Amount is set to zero exactly
// once, when the tranche is released, and never becomes non-zero again.
type Tranche struct {
	ReleaseTime time.Time    `json:"release_time"`
	Amount      types.Amount `json:"amount"`
}

// Matured reports whether the tranche has reached its release time.
func (t Tranche) Matured(now time.Time) bool {
	return !t.ReleaseTime.After(now)
}

// Released reports whether the tranche's value has already been paid out.
func (t Tranche) Released() bool { return t.Amount.IsZero() }

// Schedule is a single vesting escrow record.
//
// Token doubles as the existence sentinel: a schedule with a zero Token
// does not exist. Owner may be zero, which makes Destination permanently
// immutable — an intentional terminal state, not an error.
type Schedule struct {
	types.Entity
	ID          id.ScheduleID `json:"id"`
	Token       types.Address `json:"token"`
	Owner       types.Address `json:"owner"`
	Destination types.Address `json:"destination"`
	Tranches    []Tranche     `json:"tranches"`
}

// Exists reports whether the record denotes an existing schedule.
func (s *Schedule) Exists() bool {
	return s != nil && !s.Token.IsZero()
}

// Remaining returns the total unreleased value across all tranches.
// Creation-time accounting guarantees the sum fits the numeric range.
func (s *Schedule) Remaining() types.Amount {
	var total types.Amount
	for _, t := range s.Tranches {
		total, _ = total.CheckedAdd(t.Amount)
	}
	return total
}

// Status returns StatusFullyReleased once every tranche has been zeroed,
// StatusActive otherwise.
func (s *Schedule) Status() Status {
	if s.Remaining().IsZero() {
		return StatusFullyReleased
	}
	return StatusActive
}

// Clone returns a deep copy. Stores hand out clones so callers cannot
// mutate stored state behind the engine's back.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Tranches = make([]Tranche, len(s.Tranches))
	copy(dup.Tranches, s.Tranches)
	return &dup
}
