package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Amounts are stored as the two's-complement int64 cast of the unsigned
// value. The cast round-trips every uint64; no SQL arithmetic or ordering
// is ever done on the column.

type scheduleModel struct {
	grove.BaseModel `grove:"table:vesting_schedules"`

	ID          int64     `grove:"id,pk"`
	Token       string    `grove:"token"`
	Owner       string    `grove:"owner"`
	Destination string    `grove:"destination"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

type trancheModel struct {
	grove.BaseModel `grove:"table:vesting_tranches"`

	ScheduleID  int64     `grove:"schedule_id,pk"`
	Idx         int       `grove:"idx,pk"`
	ReleaseTime time.Time `grove:"release_time"`
	Amount      int64     `grove:"amount"`
}

func toScheduleModel(s *schedule.Schedule) *scheduleModel {
	return &scheduleModel{
		ID:          int64(s.ID),
		Token:       s.Token.String(),
		Owner:       s.Owner.String(),
		Destination: s.Destination.String(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromScheduleModel(m *scheduleModel, tranches []trancheModel) *schedule.Schedule {
	s := &schedule.Schedule{
		ID:          id.ScheduleID(m.ID),
		Token:       types.Address(m.Token),
		Owner:       types.Address(m.Owner),
		Destination: types.Address(m.Destination),
	}
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	for i := range tranches {
		s.Tranches = append(s.Tranches, fromTrancheModel(&tranches[i]))
	}
	return s
}

func toTrancheModel(sid id.ScheduleID, idx int, t schedule.Tranche) *trancheModel {
	return &trancheModel{
		ScheduleID:  int64(sid),
		Idx:         idx,
		ReleaseTime: t.ReleaseTime,
		Amount:      int64(t.Amount),
	}
}

func fromTrancheModel(m *trancheModel) schedule.Tranche {
	return schedule.Tranche{
		ReleaseTime: m.ReleaseTime,
		Amount:      types.Amount(m.Amount),
	}
}
