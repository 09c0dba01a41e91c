// Package memory provides an in-memory schedule store.
package memory

import (
	"context"
	"fmt"
	"sync"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store keeps schedules in process memory. The mutex doubles as the
// single-writer guard for the id sequence.
type Store struct {
	mu sync.RWMutex

	schedules map[id.ScheduleID]*schedule.Schedule
	lastID    uint64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		schedules: make(map[id.ScheduleID]*schedule.Schedule),
	}
}

// NextID allocates the next schedule id. Ids start at 1; zero is the
// reserved "no schedule" sentinel.
func (s *Store) NextID(_ context.Context) (id.ScheduleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	return id.ScheduleID(s.lastID), nil
}

// PutSchedule writes a schedule's identity fields under its id.
func (s *Store) PutSchedule(_ context.Context, rec *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[rec.ID]; exists {
		return fmt.Errorf("vesting/memory: schedule %s already exists", rec.ID)
	}
	s.schedules[rec.ID] = rec.Clone()
	return nil
}

// AppendTranche appends one tranche to a schedule's release plan.
func (s *Store) AppendTranche(_ context.Context, sid id.ScheduleID, t schedule.Tranche) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.schedules[sid]
	if !ok {
		return vesting.ErrScheduleNotFound
	}
	rec.Tranches = append(rec.Tranches, t)
	rec.Touch()
	return nil
}

// DiscardSchedule rolls back a failed create. The consumed id stays burned.
func (s *Store) DiscardSchedule(_ context.Context, sid id.ScheduleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.schedules, sid)
	return nil
}

// Exists reports whether the id denotes an existing schedule.
func (s *Store) Exists(_ context.Context, sid id.ScheduleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.schedules[sid]
	return ok && rec.Exists(), nil
}

// GetSchedule returns a copy of the full schedule record.
func (s *Store) GetSchedule(_ context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.schedules[sid]
	if !ok {
		return nil, vesting.ErrScheduleNotFound
	}
	return rec.Clone(), nil
}

// Token returns the schedule's token, or the zero address for unknown ids.
func (s *Store) Token(_ context.Context, sid id.ScheduleID) (types.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.schedules[sid]; ok {
		return rec.Token, nil
	}
	return types.NilAddress, nil
}

// Owner returns the schedule's owner, or the zero address for unknown ids.
func (s *Store) Owner(_ context.Context, sid id.ScheduleID) (types.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.schedules[sid]; ok {
		return rec.Owner, nil
	}
	return types.NilAddress, nil
}

// Destination returns the schedule's destination, or the zero address for
// unknown ids.
func (s *Store) Destination(_ context.Context, sid id.ScheduleID) (types.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.schedules[sid]; ok {
		return rec.Destination, nil
	}
	return types.NilAddress, nil
}

// Tranches returns a copy of the schedule's release plan, or nil for
// unknown ids.
func (s *Store) Tranches(_ context.Context, sid id.ScheduleID) ([]schedule.Tranche, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.schedules[sid]
	if !ok {
		return nil, nil
	}
	out := make([]schedule.Tranche, len(rec.Tranches))
	copy(out, rec.Tranches)
	return out, nil
}

// SetTrancheAmount overwrites one tranche's amount.
func (s *Store) SetTrancheAmount(_ context.Context, sid id.ScheduleID, index int, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.schedules[sid]
	if !ok {
		return vesting.ErrScheduleNotFound
	}
	if index < 0 || index >= len(rec.Tranches) {
		return fmt.Errorf("vesting/memory: tranche index %d out of range for schedule %s", index, sid)
	}
	rec.Tranches[index].Amount = amount
	rec.Touch()
	return nil
}

// SetOwner overwrites the schedule's owner.
func (s *Store) SetOwner(_ context.Context, sid id.ScheduleID, owner types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.schedules[sid]
	if !ok {
		return vesting.ErrScheduleNotFound
	}
	rec.Owner = owner
	rec.Touch()
	return nil
}

// SetDestination overwrites the schedule's destination.
func (s *Store) SetDestination(_ context.Context, sid id.ScheduleID, destination types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.schedules[sid]
	if !ok {
		return vesting.ErrScheduleNotFound
	}
	rec.Destination = destination
	rec.Touch()
	return nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
