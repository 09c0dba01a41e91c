// Package mongo implements the vesting schedule store on MongoDB via the
// Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	vestingstore "github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// Collection name constants.
const (
	colSchedules = "vesting_schedules"
	colCounters  = "vesting_counters"
)

// scheduleIDCounter is the _id of the counter document backing the
// never-reused schedule id sequence.
const scheduleIDCounter = "schedule_ids"

// compile-time interface check
var _ vestingstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the vesting collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "token", Value: 1}}},
	}
	if _, err := s.mdb.Collection(colSchedules).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("vesting/mongo: migrate %s indexes: %w", colSchedules, err)
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

// NextID atomically advances the schedule id sequence via an upserted
// counter document.
func (s *Store) NextID(ctx context.Context) (id.ScheduleID, error) {
	var counter counterModel
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": scheduleIDCounter},
		bson.M{"$inc": bson.M{"last_id": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return id.NilScheduleID, fmt.Errorf("vesting/mongo: advance id sequence: %w", err)
	}
	return id.ScheduleID(counter.LastID), nil
}

func (s *Store) PutSchedule(ctx context.Context, rec *schedule.Schedule) error {
	m := toScheduleModel(rec)
	if m.Tranches == nil {
		m.Tranches = []trancheModel{}
	}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("vesting/mongo: put schedule: %w", err)
	}
	return nil
}

func (s *Store) AppendTranche(ctx context.Context, sid id.ScheduleID, t schedule.Tranche) error {
	res, err := s.mdb.Collection(colSchedules).UpdateOne(ctx,
		bson.M{"_id": int64(sid)},
		bson.M{
			"$push": bson.M{"tranches": toTrancheModel(t)},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("vesting/mongo: append tranche: %w", err)
	}
	if res.MatchedCount == 0 {
		return vesting.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) DiscardSchedule(ctx context.Context, sid id.ScheduleID) error {
	_, err := s.mdb.NewDelete((*scheduleModel)(nil)).
		Filter(bson.M{"_id": int64(sid)}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("vesting/mongo: discard schedule: %w", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, sid id.ScheduleID) (bool, error) {
	count, err := s.mdb.Collection(colSchedules).CountDocuments(ctx, bson.M{"_id": int64(sid)})
	if err != nil {
		return false, fmt.Errorf("vesting/mongo: exists: %w", err)
	}
	return count > 0, nil
}

func (s *Store) GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	var m scheduleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(sid)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, vesting.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("vesting/mongo: get schedule: %w", err)
	}
	return fromScheduleModel(&m), nil
}

func (s *Store) Token(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	rec, err := s.get(ctx, sid)
	if err != nil || rec == nil {
		return types.NilAddress, err
	}
	return types.Address(rec.Token), nil
}

func (s *Store) Owner(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	rec, err := s.get(ctx, sid)
	if err != nil || rec == nil {
		return types.NilAddress, err
	}
	return types.Address(rec.Owner), nil
}

func (s *Store) Destination(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	rec, err := s.get(ctx, sid)
	if err != nil || rec == nil {
		return types.NilAddress, err
	}
	return types.Address(rec.Destination), nil
}

func (s *Store) Tranches(ctx context.Context, sid id.ScheduleID) ([]schedule.Tranche, error) {
	rec, err := s.get(ctx, sid)
	if err != nil || rec == nil {
		return nil, err
	}
	out := make([]schedule.Tranche, 0, len(rec.Tranches))
	for _, t := range rec.Tranches {
		out = append(out, fromTrancheModel(t))
	}
	return out, nil
}

// SetTrancheAmount overwrites one tranche's amount with a positional
// single-document update.
func (s *Store) SetTrancheAmount(ctx context.Context, sid id.ScheduleID, index int, amount types.Amount) error {
	if index < 0 {
		return fmt.Errorf("vesting/mongo: tranche index %d out of range for schedule %s", index, sid)
	}
	res, err := s.mdb.Collection(colSchedules).UpdateOne(ctx,
		bson.M{"_id": int64(sid)},
		bson.M{"$set": bson.M{
			fmt.Sprintf("tranches.%d.amount", index): int64(amount),
			"updated_at":                             time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("vesting/mongo: set tranche amount: %w", err)
	}
	if res.MatchedCount == 0 {
		return vesting.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) SetOwner(ctx context.Context, sid id.ScheduleID, owner types.Address) error {
	return s.setField(ctx, sid, "owner", owner.String())
}

func (s *Store) SetDestination(ctx context.Context, sid id.ScheduleID, destination types.Address) error {
	return s.setField(ctx, sid, "destination", destination.String())
}

// ==================== helpers ====================

// get fetches the schedule document, mapping absence to (nil, nil) for the
// zero-value accessor contract.
func (s *Store) get(ctx context.Context, sid id.ScheduleID) (*scheduleModel, error) {
	var m scheduleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(sid)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("vesting/mongo: get schedule: %w", err)
	}
	return &m, nil
}

func (s *Store) setField(ctx context.Context, sid id.ScheduleID, field, value string) error {
	res, err := s.mdb.NewUpdate((*scheduleModel)(nil)).
		Filter(bson.M{"_id": int64(sid)}).
		Set(field, value).
		Set("updated_at", time.Now().UTC()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("vesting/mongo: set %s: %w", field, err)
	}
	if res.MatchedCount() == 0 {
		return vesting.ErrScheduleNotFound
	}
	return nil
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
