package vesting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/ledger"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// Engine is the token-vesting escrow engine.
//
// It validates and creates vesting schedules, pulls the committed total
// into escrow through the external value ledger, releases matured tranches
// to each schedule's destination, and arbitrates owner/destination
// delegation. Schedules live in the injected Store; value lives in the
// injected Ledger — the engine holds no balances of its own.
type Engine struct {
	store   store.Store
	ledger  ledger.Ledger
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   func() time.Time

	// Serializes schedule mutations. Deliberately released before any
	// outbound ledger push so that a reentrant unlock observes final
	// (already zeroed) state instead of deadlocking.
	mu sync.Mutex
}

// New creates a new Engine backed by the given schedule store and value
// ledger.
func New(s store.Store, l ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		ledger:  l,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the time reference used to decide tranche maturity.
// The host must provide a monotonically non-decreasing clock; the default
// is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("vesting engine started")
	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	e.plugins.EmitShutdown(context.Background())
	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Schedule creation
// ──────────────────────────────────────────────────

// Create validates a new vesting schedule, persists it, and pulls the
// committed total from source into escrow. Either every effect takes
// place or none do: a rejected pull rolls the stored schedule back before
// the error is returned, so no partially created schedule is observable.
//
// owner may be the zero address, in which case the destination is
// permanently fixed. tranches must be non-empty, carry non-zero amounts
// and release times, and be ordered by non-decreasing release time.
func (e *Engine) Create(
	ctx context.Context,
	token, owner, source, destination types.Address,
	tranches []schedule.Tranche,
) (id.ScheduleID, error) {
	if token.IsZero() {
		return id.NilScheduleID, ErrInvalidToken
	}
	if source.IsZero() {
		return id.NilScheduleID, ErrInvalidSource
	}
	if destination.IsZero() {
		return id.NilScheduleID, ErrInvalidDestination
	}

	total, err := validateTranches(tranches)
	if err != nil {
		return id.NilScheduleID, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sid, err := e.store.NextID(ctx)
	if err != nil {
		return id.NilScheduleID, err
	}

	rec := &schedule.Schedule{
		Entity:      types.NewEntity(),
		ID:          sid,
		Token:       token,
		Owner:       owner,
		Destination: destination,
	}
	if err := e.store.PutSchedule(ctx, rec); err != nil {
		return id.NilScheduleID, err
	}
	for _, t := range tranches {
		if err := e.store.AppendTranche(ctx, sid, t); err != nil {
			e.discard(ctx, sid)
			return id.NilScheduleID, err
		}
	}

	if err := e.ledger.Pull(ctx, token, source, total); err != nil {
		e.discard(ctx, sid)
		e.plugins.EmitTransferFailed(ctx, sid, "create", err)
		e.logger.Warn("schedule creation rolled back: ledger rejected pull",
			"schedule_id", sid,
			"token", token,
			"source", source,
			"total", total,
			"error", err,
		)
		return id.NilScheduleID, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	rec.Tranches = append([]schedule.Tranche(nil), tranches...)
	e.plugins.EmitScheduleCreated(ctx, rec)

	e.logger.Debug("schedule created",
		"schedule_id", sid,
		"token", token,
		"tranches", len(tranches),
		"total", total,
	)
	return sid, nil
}

// validateTranches checks the release plan and returns its checked total.
func validateTranches(tranches []schedule.Tranche) (types.Amount, error) {
	if len(tranches) == 0 {
		return 0, fmt.Errorf("%w: empty tranche list", ErrInvalidSchedule)
	}

	var total types.Amount
	var prev time.Time
	for i, t := range tranches {
		if t.Amount.IsZero() {
			return 0, fmt.Errorf("%w: tranche %d has zero amount", ErrInvalidSchedule, i)
		}
		if t.ReleaseTime.IsZero() {
			return 0, fmt.Errorf("%w: tranche %d has zero release time", ErrInvalidSchedule, i)
		}
		if t.ReleaseTime.Before(prev) {
			return 0, fmt.Errorf("%w: tranche %d release time precedes tranche %d", ErrInvalidSchedule, i, i-1)
		}
		prev = t.ReleaseTime

		next, ok := total.CheckedAdd(t.Amount)
		if !ok {
			return 0, fmt.Errorf("%w: total overflows the value range", ErrInvalidSchedule)
		}
		total = next
	}
	return total, nil
}

// discard rolls back the store writes of a failed create.
func (e *Engine) discard(ctx context.Context, sid id.ScheduleID) {
	if err := e.store.DiscardSchedule(ctx, sid); err != nil {
		e.logger.Error("failed to roll back schedule",
			"schedule_id", sid,
			"error", err,
		)
	}
}

// ──────────────────────────────────────────────────
// Unlock
// ──────────────────────────────────────────────────

// Unlock releases all currently matured, unreleased tranche value of a
// schedule to its recorded destination.
//
// Tranches are scanned in stored order and the scan stops at the first
// tranche whose release time is still in the future — valid because
// creation enforces non-decreasing release times. Every zeroing write is
// committed before the outbound push (effects before interactions), so a
// reentrant call on the same schedule sees zeroed tranches and returns
// ErrNoUnlocksAvailable instead of double-paying.
//
// A push rejected by the ledger after the tranches were zeroed is an
// accounting divergence surfaced as *InvariantError; it is unrecoverable
// and never retried.
func (e *Engine) Unlock(ctx context.Context, sid id.ScheduleID) error {
	e.mu.Lock()

	rec, err := e.store.GetSchedule(ctx, sid)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	now := e.clock()

	var total types.Amount
	zeroed := false
	for i, t := range rec.Tranches {
		if !t.Matured(now) {
			break
		}
		if t.Released() {
			continue
		}

		next, ok := total.CheckedAdd(t.Amount)
		if !ok {
			// Creation-time accounting caps the schedule total; an
			// overflowing unlock means the stored amounts were corrupted.
			e.mu.Unlock()
			return &InvariantError{Op: "unlock", ID: sid, Err: errors.New("unlocked total overflows the value range")}
		}

		if err := e.store.SetTrancheAmount(ctx, sid, i, 0); err != nil {
			e.mu.Unlock()
			if zeroed {
				// Earlier tranches are already zeroed but their value was
				// not pushed; stored state and the ledger now disagree.
				return &InvariantError{Op: "unlock", ID: sid, Err: err}
			}
			return err
		}
		zeroed = true
		total = next
	}

	if total.IsZero() {
		e.mu.Unlock()
		e.plugins.EmitNoUnlocks(ctx, sid)
		return ErrNoUnlocksAvailable
	}

	// All zeroing writes are committed; release the guard before the
	// outbound call so a reentrant unlock can observe final state.
	e.mu.Unlock()

	if err := e.ledger.Push(ctx, rec.Token, rec.Destination, total); err != nil {
		e.plugins.EmitTransferFailed(ctx, sid, "unlock", err)
		e.logger.Error("push failed after tranche zeroing; escrow accounting has diverged",
			"schedule_id", sid,
			"token", rec.Token,
			"destination", rec.Destination,
			"amount", total,
			"error", err,
		)
		return &InvariantError{Op: "unlock", ID: sid, Err: err}
	}

	e.plugins.EmitValueUnlocked(ctx, sid, rec.Destination, total)

	e.logger.Debug("value unlocked",
		"schedule_id", sid,
		"destination", rec.Destination,
		"amount", total,
	)
	return nil
}

// ──────────────────────────────────────────────────
// Delegation
// ──────────────────────────────────────────────────

// ChangeDestination redirects a schedule's future releases. Only the
// current owner may call it, and the new destination must be non-zero.
func (e *Engine) ChangeDestination(ctx context.Context, caller types.Address, sid id.ScheduleID, destination types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.store.Exists(ctx, sid)
	if err != nil {
		return err
	}
	if !exists {
		return ErrScheduleNotFound
	}

	if destination.IsZero() {
		return ErrInvalidDestination
	}

	owner, err := e.store.Owner(ctx, sid)
	if err != nil {
		return err
	}
	// A zero owner authorizes nobody: the destination is frozen for good.
	if owner.IsZero() || caller != owner {
		return ErrUnauthorized
	}

	old, err := e.store.Destination(ctx, sid)
	if err != nil {
		return err
	}
	if err := e.store.SetDestination(ctx, sid, destination); err != nil {
		return err
	}

	e.plugins.EmitDestinationChanged(ctx, sid, old, destination)

	e.logger.Debug("destination changed",
		"schedule_id", sid,
		"old", old,
		"new", destination,
	)
	return nil
}

// ChangeOwner hands a schedule's delegate authority to a new owner. Only
// the current owner may call it. The new owner may be the zero address,
// which permanently freezes the destination — an intentional terminal
// state, not an error.
func (e *Engine) ChangeOwner(ctx context.Context, caller types.Address, sid id.ScheduleID, owner types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.store.Exists(ctx, sid)
	if err != nil {
		return err
	}
	if !exists {
		return ErrScheduleNotFound
	}

	current, err := e.store.Owner(ctx, sid)
	if err != nil {
		return err
	}
	if current.IsZero() || caller != current {
		return ErrUnauthorized
	}

	if err := e.store.SetOwner(ctx, sid, owner); err != nil {
		return err
	}

	e.plugins.EmitOwnerChanged(ctx, sid, current, owner)

	e.logger.Debug("owner changed",
		"schedule_id", sid,
		"old", current,
		"new", owner,
	)
	return nil
}

// ──────────────────────────────────────────────────
// Views
// ──────────────────────────────────────────────────

// TokenOf returns the schedule's token, or the zero address for unknown
// ids (sentinel semantics: a zero token means "no such schedule").
func (e *Engine) TokenOf(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	return e.store.Token(ctx, sid)
}

// OwnerOf returns the schedule's current owner, or the zero address for
// unknown ids. A zero owner on an existing schedule means no delegate is
// installed; check Exists to distinguish the two.
func (e *Engine) OwnerOf(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	return e.store.Owner(ctx, sid)
}

// DestinationOf returns the schedule's current destination, or the zero
// address for unknown ids.
func (e *Engine) DestinationOf(ctx context.Context, sid id.ScheduleID) (types.Address, error) {
	return e.store.Destination(ctx, sid)
}

// TranchesOf returns a copy of the schedule's release plan, or an empty
// slice for unknown ids.
func (e *Engine) TranchesOf(ctx context.Context, sid id.ScheduleID) ([]schedule.Tranche, error) {
	return e.store.Tranches(ctx, sid)
}

// Exists reports whether the id denotes an existing schedule. A fully
// released schedule still exists; only never-issued ids do not.
func (e *Engine) Exists(ctx context.Context, sid id.ScheduleID) (bool, error) {
	return e.store.Exists(ctx, sid)
}
