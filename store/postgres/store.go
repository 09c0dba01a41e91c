// Package postgres implements the vesting schedule store on PostgreSQL via
// the Grove ORM. This is the recommended backend for production embeddings.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	vestingstore "github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// compile-time interface check
var _ vestingstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("vesting/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("vesting/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NextID atomically advances the schedule id sequence.
func (s *Store) NextID(ctx context.Context) (id.ScheduleID, error) {
	var next int64
	err := s.pg.NewRaw(`SELECT nextval('vesting_schedule_ids')`).Scan(ctx, &next)
	if err != nil {
		return id.NilScheduleID, fmt.Errorf("vesting/postgres: advance id sequence: %w", err)
	}
	return id.ScheduleID(next), nil
}

func (s *Store) PutSchedule(ctx context.Context, rec *schedule.Schedule) error {
	_, err := s.pg.NewInsert(toScheduleModel(rec)).Exec(ctx)
	return err
}

func (s *Store) AppendTranche(ctx context.Context, sid id.ScheduleID, t schedule.Tranche) error {
	var count int
	err := s.pg.NewRaw(`
		SELECT COUNT(*) FROM vesting_tranches WHERE schedule_id = $1
	`, int64(sid)).Scan(ctx, &count)
	if err != nil {
		return err
	}

	_, err = s.pg.NewInsert(toTrancheModel(sid, count, t)).Exec(ctx)
	return err
}

func (s *Store) DiscardSchedule(ctx context.Context, sid id.ScheduleID) error {
	if _, err := s.pg.NewDelete((*trancheModel)(nil)).
		Where("schedule_id = $1", int64(sid)).
		Exec(ctx); err != nil {
		return err
	}
	_, err := s.pg.NewDelete((*scheduleModel)(nil)).
		Where("id = $1", int64(sid)).
		Exec(ctx)
	return err
}

func (s *Store) Exists(ctx context.Context, sid id.ScheduleID) (bool, error) {
	var count int
	err := s.pg.NewRaw(`
		SELECT COUNT(*) FROM vesting_schedules WHERE id = $1
	`, int64(sid)).Scan(ctx, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	m := new(scheduleModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", int64(sid)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, vesting.ErrScheduleNotFound
		}
		return nil, err
	}

	tranches, err := s.trancheModels(ctx, sid)
	if err != nil {
		return nil, err
	}
	return fromScheduleModel(m, tranches), nil
}

func (s *Store) Token(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	return s.addressColumn(ctx, sid, "token")
}

func (s *Store) Owner(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	return s.addressColumn(ctx, sid, "owner")
}

func (s *Store) Destination(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	return s.addressColumn(ctx, sid, "destination")
}

func (s *Store) Tranches(ctx context.Context, sid id.ScheduleID) ([]schedule.Tranche, error) {
	models, err := s.trancheModels(ctx, sid)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.Tranche, 0, len(models))
	for i := range models {
		out = append(out, fromTrancheModel(&models[i]))
	}
	return out, nil
}

func (s *Store) SetTrancheAmount(ctx context.Context, sid id.ScheduleID, index int, amount types.Amount) error {
	res, err := s.pg.NewUpdate((*trancheModel)(nil)).
		Set("amount = $1", int64(amount)).
		Where("schedule_id = $2", int64(sid)).
		Where("idx = $3", index).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return vesting.ErrScheduleNotFound
	}
	return s.touch(ctx, sid)
}

func (s *Store) SetOwner(ctx context.Context, sid id.ScheduleID, owner types.Address) error {
	return s.setAddressColumn(ctx, sid, "owner", owner)
}

func (s *Store) SetDestination(ctx context.Context, sid id.ScheduleID, destination types.Address) error {
	return s.setAddressColumn(ctx, sid, "destination", destination)
}

// ==================== helpers ====================

func (s *Store) trancheModels(ctx context.Context, sid id.ScheduleID) ([]trancheModel, error) {
	var models []trancheModel
	err := s.pg.NewSelect(&models).
		Where("schedule_id = $1", int64(sid)).
		OrderExpr("idx ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (s *Store) addressColumn(ctx context.Context, sid id.ScheduleID, column string) (types.Address, error) {
	var value string
	err := s.pg.NewRaw(
		`SELECT `+column+` FROM vesting_schedules WHERE id = $1`, int64(sid),
	).Scan(ctx, &value)
	if err != nil {
		if isNoRows(err) {
			return types.NilAddress, nil
		}
		return types.NilAddress, err
	}
	return types.Address(value), nil
}

func (s *Store) setAddressColumn(ctx context.Context, sid id.ScheduleID, column string, value types.Address) error {
	res, err := s.pg.NewUpdate((*scheduleModel)(nil)).
		Set(column+" = $1", value.String()).
		Set("updated_at = $2", time.Now().UTC()).
		Where("id = $3", int64(sid)).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return vesting.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) touch(ctx context.Context, sid id.ScheduleID) error {
	_, err := s.pg.NewUpdate((*scheduleModel)(nil)).
		Set("updated_at = $1", time.Now().UTC()).
		Where("id = $2", int64(sid)).
		Exec(ctx)
	return err
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
