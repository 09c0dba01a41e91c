package vesting

import (
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/ledger"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Re-export common types for convenience so users don't have to import the
// leaf packages.

// Amount is re-exported from the types package.
type Amount = types.Amount

// Address is re-exported from the types package.
type Address = types.Address

// Entity is re-exported from the types package.
type Entity = types.Entity

// Tranche is re-exported from the schedule package.
type Tranche = schedule.Tranche

// Schedule is re-exported from the schedule package.
type Schedule = schedule.Schedule

// ScheduleID is re-exported from the id package.
type ScheduleID = id.ScheduleID

// Ledger is the external value collaborator the engine pulls escrow from
// and pushes unlocked value to.
type Ledger = ledger.Ledger

// Re-export sentinels and constructors.
var (
	NilAddress    = types.NilAddress
	NilScheduleID = id.NilScheduleID
	NewEntity     = types.NewEntity
)
