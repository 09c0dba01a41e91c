// Package sqlite implements the vesting schedule store on SQLite via the
// Grove ORM. Suitable for single-node embeddings and local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	vestingstore "github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// compile-time interface check
var _ vestingstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("vesting/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("vesting/sqlite: migration failed: %w", err)
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
	err := s.sdb.NewRaw(`
		UPDATE vesting_sequence SET last_id = last_id + 1 WHERE id = 1
		RETURNING last_id
	`).Scan(ctx, &next)
	if err != nil {
		return id.NilScheduleID, fmt.Errorf("vesting/sqlite: advance id sequence: %w", err)
	}
	return id.ScheduleID(next), nil
}

func (s *Store) PutSchedule(ctx context.Context, rec *schedule.Schedule) error {
	_, err := s.sdb.NewInsert(toScheduleModel(rec)).Exec(ctx)
	return err
}

func (s *Store) AppendTranche(ctx context.Context, sid id.ScheduleID, t schedule.Tranche) error {
	var count int
	err := s.sdb.NewRaw(`
		SELECT COUNT(*) FROM vesting_tranches WHERE schedule_id = ?
	`, int64(sid)).Scan(ctx, &count)
	if err != nil {
		return err
	}

	_, err = s.sdb.NewInsert(toTrancheModel(sid, count, t)).Exec(ctx)
	return err
}

func (s *Store) DiscardSchedule(ctx context.Context, sid id.ScheduleID) error {
	if _, err := s.sdb.NewDelete((*trancheModel)(nil)).
		Where("schedule_id = ?", int64(sid)).
		Exec(ctx); err != nil {
		return err
	}
	_, err := s.sdb.NewDelete((*scheduleModel)(nil)).
		Where("id = ?", int64(sid)).
		Exec(ctx)
	return err
}

func (s *Store) Exists(ctx context.Context, sid id.ScheduleID) (bool, error) {
	var count int
	err := s.sdb.NewRaw(`
		SELECT COUNT(*) FROM vesting_schedules WHERE id = ?
	`, int64(sid)).Scan(ctx, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	m := new(scheduleModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(sid)).
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
	res, err := s.sdb.NewUpdate((*trancheModel)(nil)).
		Set("amount = ?", int64(amount)).
		Where("schedule_id = ?", int64(sid)).
		Where("idx = ?", index).
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
	err := s.sdb.NewSelect(&models).
		Where("schedule_id = ?", int64(sid)).
		OrderExpr("idx ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (s *Store) addressColumn(ctx context.Context, sid id.ScheduleID, column string) (types.Address, error) {
	var value string
	err := s.sdb.NewRaw(
		`SELECT `+column+` FROM vesting_schedules WHERE id = ?`, int64(sid),
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
	res, err := s.sdb.NewUpdate((*scheduleModel)(nil)).
		Set(column+" = ?", value.String()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", int64(sid)).
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
	_, err := s.sdb.NewUpdate((*scheduleModel)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", int64(sid)).
		Exec(ctx)
	return err
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
