// Package store defines the storage interface for vesting schedules.
package store

import (
	"context"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Store is the keyed storage substrate for vesting schedules.
//
// No authorization or input validation happens here — the engine performs
// all validation before calling in. Field accessors return the zero value
// for unknown ids (sentinel semantics); GetSchedule is the tagged
// alternative and returns vesting.ErrScheduleNotFound instead.
type Store interface {
	// NextID allocates a fresh schedule id from the store's monotonic
	// sequence. Allocated ids are never reissued, including ids consumed
	// by a create that was later rolled back. Single-writer access is the
	// host's responsibility; in-process stores serialize it internally.
	NextID(ctx context.Context) (id.ScheduleID, error)

	// PutSchedule writes a schedule's identity fields (token, owner,
	// destination) during creation. Tranches are appended separately.
	PutSchedule(ctx context.Context, s *schedule.Schedule) error

	// AppendTranche appends one tranche to a schedule's release plan.
	// Used only during creation; no removal operation exists.
	AppendTranche(ctx context.Context, sid id.ScheduleID, t schedule.Tranche) error

	// DiscardSchedule removes every trace of a schedule written by an
	// in-flight create whose ledger pull failed. It exists solely for that
	// atomic rollback; schedules are never deleted once Create returns.
	DiscardSchedule(ctx context.Context, sid id.ScheduleID) error

	// Exists reports whether the id denotes an existing schedule
	// (non-zero stored token).
	Exists(ctx context.Context, sid id.ScheduleID) (bool, error)

	// GetSchedule returns the full schedule record, or
	// vesting.ErrScheduleNotFound for unknown ids.
	GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error)

	// Field accessors. All return the zero value for unknown ids.
	Token(ctx context.Context, sid id.ScheduleID) (types.Address, error)
	Owner(ctx context.Context, sid id.ScheduleID) (types.Address, error)
	Destination(ctx context.Context, sid id.ScheduleID) (types.Address, error)
	Tranches(ctx context.Context, sid id.ScheduleID) ([]schedule.Tranche, error)

	// SetTrancheAmount overwrites the amount of one tranche. Used only
	// during unlock, to zero a matured tranche.
	SetTrancheAmount(ctx context.Context, sid id.ScheduleID, index int, amount types.Amount) error

	// SetOwner and SetDestination overwrite the delegation fields.
	SetOwner(ctx context.Context, sid id.ScheduleID, owner types.Address) error
	SetDestination(ctx context.Context, sid id.ScheduleID, destination types.Address) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
