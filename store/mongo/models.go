package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Tranches are embedded in the schedule document: they are only ever read
// and written through their schedule, and positional updates keep the
// zeroing of a matured tranche a single-document operation.
//
// Amounts are stored as the two's-complement int64 cast of the unsigned
// value; the cast round-trips every uint64.

type scheduleModel struct {
	grove.BaseModel `grove:"table:vesting_schedules"`

	ID          int64          `grove:"id,pk"       bson:"_id"`
	Token       string         `grove:"token"       bson:"token"`
	Owner       string         `grove:"owner"       bson:"owner"`
	Destination string         `grove:"destination" bson:"destination"`
	Tranches    []trancheModel `grove:"tranches"    bson:"tranches"`
	CreatedAt   time.Time      `grove:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time      `grove:"updated_at"  bson:"updated_at"`
}

type trancheModel struct {
	ReleaseTime time.Time `bson:"release_time"`
	Amount      int64     `bson:"amount"`
}

// counterModel backs the monotonic schedule id sequence.
type counterModel struct {
	ID     string `bson:"_id"`
	LastID int64  `bson:"last_id"`
}

func toScheduleModel(s *schedule.Schedule) *scheduleModel {
	m := &scheduleModel{
		ID:          int64(s.ID),
		Token:       s.Token.String(),
		Owner:       s.Owner.String(),
		Destination: s.Destination.String(),
		Tranches:    make([]trancheModel, 0, len(s.Tranches)),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for _, t := range s.Tranches {
		m.Tranches = append(m.Tranches, toTrancheModel(t))
	}
	return m
}

func fromScheduleModel(m *scheduleModel) *schedule.Schedule {
	s := &schedule.Schedule{
		ID:          id.ScheduleID(m.ID),
		Token:       types.Address(m.Token),
		Owner:       types.Address(m.Owner),
		Destination: types.Address(m.Destination),
	}
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	for _, t := range m.Tranches {
		s.Tranches = append(s.Tranches, fromTrancheModel(t))
	}
	return s
}

func toTrancheModel(t schedule.Tranche) trancheModel {
	return trancheModel{
		ReleaseTime: t.ReleaseTime,
		Amount:      int64(t.Amount),
	}
}

func fromTrancheModel(m trancheModel) schedule.Tranche {
	return schedule.Tranche{
		ReleaseTime: m.ReleaseTime,
		Amount:      types.Amount(m.Amount),
	}
}
