package vesting_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/vesting"
	"github.com/xraph/vesting/id"
	memledger "github.com/xraph/vesting/ledger/memory"
	"github.com/xraph/vesting/schedule"
	memstore "github.com/xraph/vesting/store/memory"
	"github.com/xraph/vesting/types"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	tokenGLD = types.Address("token-gld")
	sourceA  = types.Address("treasury")
	ownerA   = types.Address("owner-a")
	ownerB   = types.Address("owner-b")
	destA    = types.Address("dest-a")
	destB    = types.Address("dest-b")
)

// fakeClock is an engine clock the tests advance by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts ...vesting.Option) (*vesting.Engine, *memledger.Ledger, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: epoch}
	bank := memledger.New()
	bank.Mint(tokenGLD, sourceA, 1_000_000)

	opts = append([]vesting.Option{
		vesting.WithClock(clock.Now),
		vesting.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)

	v := vesting.New(memstore.New(), bank, opts...)
	if err := v.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = v.Stop() })

	return v, bank, clock
}

// tranches builds a release plan of (offset from epoch in seconds, amount)
// pairs.
func tranches(pairs ...[2]uint64) []vesting.Tranche {
	out := make([]vesting.Tranche, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, vesting.Tranche{
			ReleaseTime: epoch.Add(time.Duration(p[0]) * time.Second),
			Amount:      types.Amount(p[1]),
		})
	}
	return out
}

func TestVestingLifecycle(t *testing.T) {
	v, bank, clock := newTestEngine(t)
	ctx := context.Background()

	// Three tranches of 20 at t=0s, t=100s, t=200s.
	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{0, 20}, [2]uint64{100, 20}, [2]uint64{200, 20}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sid.IsNil() {
		t.Fatal("create returned the nil schedule id")
	}

	// The full total is escrowed up front.
	if got := bank.EscrowOf(tokenGLD); got != 60 {
		t.Fatalf("escrow after create = %d, want 60", got)
	}
	if got := bank.BalanceOf(tokenGLD, sourceA); got != 1_000_000-60 {
		t.Fatalf("source balance after create = %d, want %d", got, 1_000_000-60)
	}

	// t=1s: only the first tranche has matured.
	clock.Advance(1 * time.Second)
	if err := v.Unlock(ctx, sid); err != nil {
		t.Fatalf("first unlock: %v", err)
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != 20 {
		t.Fatalf("destination after first unlock = %d, want 20", got)
	}
	if got := bank.EscrowOf(tokenGLD); got != 40 {
		t.Fatalf("escrow after first unlock = %d, want 40", got)
	}

	// No time advance: a second unlock is a clean no-op.
	if err := v.Unlock(ctx, sid); !errors.Is(err, vesting.ErrNoUnlocksAvailable) {
		t.Fatalf("repeat unlock = %v, want ErrNoUnlocksAvailable", err)
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != 20 {
		t.Fatalf("destination after no-op unlock = %d, want 20", got)
	}

	// t=150s: second tranche matures.
	clock.Advance(149 * time.Second)
	if err := v.Unlock(ctx, sid); err != nil {
		t.Fatalf("second unlock: %v", err)
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != 40 {
		t.Fatalf("destination after second unlock = %d, want 40", got)
	}
	if got := bank.EscrowOf(tokenGLD); got != 20 {
		t.Fatalf("escrow after second unlock = %d, want 20", got)
	}

	// t=250s: the final tranche matures and the schedule fully releases.
	clock.Advance(100 * time.Second)
	if err := v.Unlock(ctx, sid); err != nil {
		t.Fatalf("final unlock: %v", err)
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != 60 {
		t.Fatalf("destination after final unlock = %d, want 60", got)
	}
	if got := bank.EscrowOf(tokenGLD); got != 0 {
		t.Fatalf("escrow after final unlock = %d, want 0", got)
	}

	// Fully released schedules still exist; only their value is gone.
	exists, err := v.Exists(ctx, sid)
	if err != nil || !exists {
		t.Fatalf("exists after full release = (%v, %v), want (true, nil)", exists, err)
	}
	remaining, err := v.TranchesOf(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	for i, tr := range remaining {
		if !tr.Released() {
			t.Fatalf("tranche %d still holds %d after full release", i, tr.Amount)
		}
	}
	if err := v.Unlock(ctx, sid); !errors.Is(err, vesting.ErrNoUnlocksAvailable) {
		t.Fatalf("unlock after full release = %v, want ErrNoUnlocksAvailable", err)
	}
}

func TestCreateValidation(t *testing.T) {
	v, _, _ := newTestEngine(t)
	ctx := context.Background()

	plan := tranches([2]uint64{100, 20})

	tests := []struct {
		name     string
		token    types.Address
		source   types.Address
		dest     types.Address
		tranches []vesting.Tranche
		want     error
	}{
		{"zero token", vesting.NilAddress, sourceA, destA, plan, vesting.ErrInvalidToken},
		{"zero source", tokenGLD, vesting.NilAddress, destA, plan, vesting.ErrInvalidSource},
		{"zero destination", tokenGLD, sourceA, vesting.NilAddress, plan, vesting.ErrInvalidDestination},
		{"empty tranche list", tokenGLD, sourceA, destA, nil, vesting.ErrInvalidSchedule},
		{"zero tranche amount", tokenGLD, sourceA, destA,
			tranches([2]uint64{100, 0}), vesting.ErrInvalidSchedule},
		{"zero release time", tokenGLD, sourceA, destA,
			[]vesting.Tranche{{Amount: 20}}, vesting.ErrInvalidSchedule},
		{"descending release times", tokenGLD, sourceA, destA,
			tranches([2]uint64{200, 10}, [2]uint64{100, 10}), vesting.ErrInvalidSchedule},
		{"total overflow", tokenGLD, sourceA, destA,
			[]vesting.Tranche{
				{ReleaseTime: epoch.Add(time.Second), Amount: types.MaxAmount},
				{ReleaseTime: epoch.Add(2 * time.Second), Amount: 1},
			}, vesting.ErrInvalidSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid, err := v.Create(ctx, tt.token, ownerA, tt.source, tt.dest, tt.tranches)
			if !errors.Is(err, tt.want) {
				t.Fatalf("create = %v, want %v", err, tt.want)
			}
			if !sid.IsNil() {
				t.Fatalf("rejected create returned id %s", sid)
			}
		})
	}

	// Equal release times are allowed: the ordering rule is non-decreasing.
	t.Run("equal release times", func(t *testing.T) {
		if _, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
			tranches([2]uint64{100, 10}, [2]uint64{100, 10})); err != nil {
			t.Fatalf("create with equal release times: %v", err)
		}
	})
}

func TestCreateRollback(t *testing.T) {
	v, bank, _ := newTestEngine(t)
	ctx := context.Background()

	bank.FailPulls = true
	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{100, 20}, [2]uint64{200, 30}))
	if !errors.Is(err, vesting.ErrTransferFailed) {
		t.Fatalf("create with rejected pull = %v, want ErrTransferFailed", err)
	}
	if !sid.IsNil() {
		t.Fatalf("failed create returned id %s", sid)
	}

	// Nothing moved and nothing is observable.
	if got := bank.EscrowOf(tokenGLD); got != 0 {
		t.Fatalf("escrow after rollback = %d, want 0", got)
	}
	if got := bank.BalanceOf(tokenGLD, sourceA); got != 1_000_000 {
		t.Fatalf("source balance after rollback = %d, want untouched", got)
	}

	// Insufficient funds roll back the same way.
	bank.FailPulls = false
	if _, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{100, 2_000_000})); !errors.Is(err, vesting.ErrTransferFailed) {
		t.Fatalf("create beyond source balance = %v, want ErrTransferFailed", err)
	}

	// The ids consumed by failed creates are burned, never reissued, and
	// never resolve to a schedule.
	sid, err = v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{100, 20}))
	if err != nil {
		t.Fatalf("create after rollbacks: %v", err)
	}
	if sid != 3 {
		t.Fatalf("id after two burned creates = %s, want 3", sid)
	}
	for burned := id.ScheduleID(1); burned < sid; burned++ {
		exists, err := v.Exists(ctx, burned)
		if err != nil {
			t.Fatal(err)
		}
		if exists {
			t.Fatalf("burned id %s still resolves to a schedule", burned)
		}
	}
}

func TestConservation(t *testing.T) {
	v, bank, clock := newTestEngine(t)
	ctx := context.Background()

	const initial = 17 + 5 + 41 + 100
	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 17}, [2]uint64{20, 5}, [2]uint64{30, 41}, [2]uint64{40, 100}))
	if err != nil {
		t.Fatal(err)
	}

	check := func(step string) {
		t.Helper()

		trs, err := v.TranchesOf(ctx, sid)
		if err != nil {
			t.Fatal(err)
		}
		remaining, ok := types.SumChecked(amounts(trs)...)
		if !ok {
			t.Fatalf("%s: remaining total overflows", step)
		}
		pushed := bank.BalanceOf(tokenGLD, destA)
		if uint64(remaining)+uint64(pushed) != initial {
			t.Fatalf("%s: remaining %d + pushed %d != initial %d", step, remaining, pushed, initial)
		}
		if got := bank.EscrowOf(tokenGLD); got != remaining {
			t.Fatalf("%s: escrow %d != remaining tranche value %d", step, got, remaining)
		}
	}

	check("after create")
	for i := 0; i < 5; i++ {
		clock.Advance(11 * time.Second)
		if err := v.Unlock(ctx, sid); err != nil && !errors.Is(err, vesting.ErrNoUnlocksAvailable) {
			t.Fatal(err)
		}
		check("after unlock")
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != initial {
		t.Fatalf("destination after full vest = %d, want %d", got, initial)
	}
}

func amounts(trs []schedule.Tranche) []types.Amount {
	out := make([]types.Amount, 0, len(trs))
	for _, tr := range trs {
		out = append(out, tr.Amount)
	}
	return out
}

func TestTrancheAmountsNeverIncrease(t *testing.T) {
	v, _, clock := newTestEngine(t)
	ctx := context.Background()

	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 30}, [2]uint64{20, 70}))
	if err != nil {
		t.Fatal(err)
	}

	prev, err := v.TranchesOf(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		clock.Advance(7 * time.Second)
		if err := v.Unlock(ctx, sid); err != nil && !errors.Is(err, vesting.ErrNoUnlocksAvailable) {
			t.Fatal(err)
		}

		cur, err := v.TranchesOf(ctx, sid)
		if err != nil {
			t.Fatal(err)
		}
		for j := range cur {
			if cur[j].Amount > prev[j].Amount {
				t.Fatalf("tranche %d grew from %d to %d", j, prev[j].Amount, cur[j].Amount)
			}
		}
		prev = cur
	}
}

func TestDelegation(t *testing.T) {
	v, _, _ := newTestEngine(t)
	ctx := context.Background()

	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{100, 20}))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("non-owner is rejected", func(t *testing.T) {
		if err := v.ChangeDestination(ctx, ownerB, sid, destB); !errors.Is(err, vesting.ErrUnauthorized) {
			t.Fatalf("change destination by stranger = %v, want ErrUnauthorized", err)
		}
		if err := v.ChangeOwner(ctx, ownerB, sid, ownerB); !errors.Is(err, vesting.ErrUnauthorized) {
			t.Fatalf("change owner by stranger = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("owner redirects destination", func(t *testing.T) {
		if err := v.ChangeDestination(ctx, ownerA, sid, destB); err != nil {
			t.Fatalf("change destination by owner: %v", err)
		}
		got, err := v.DestinationOf(ctx, sid)
		if err != nil || got != destB {
			t.Fatalf("destination = (%s, %v), want %s", got, err, destB)
		}
	})

	t.Run("zero destination is rejected", func(t *testing.T) {
		if err := v.ChangeDestination(ctx, ownerA, sid, vesting.NilAddress); !errors.Is(err, vesting.ErrInvalidDestination) {
			t.Fatalf("change destination to zero = %v, want ErrInvalidDestination", err)
		}
	})

	t.Run("ownership hand-off", func(t *testing.T) {
		if err := v.ChangeOwner(ctx, ownerA, sid, ownerB); err != nil {
			t.Fatalf("change owner: %v", err)
		}
		// The old owner lost its authority with the hand-off.
		if err := v.ChangeDestination(ctx, ownerA, sid, destA); !errors.Is(err, vesting.ErrUnauthorized) {
			t.Fatalf("change destination by former owner = %v, want ErrUnauthorized", err)
		}
		if err := v.ChangeDestination(ctx, ownerB, sid, destA); err != nil {
			t.Fatalf("change destination by new owner: %v", err)
		}
	})

	t.Run("unknown schedule", func(t *testing.T) {
		if err := v.ChangeDestination(ctx, ownerA, 9999, destB); !errors.Is(err, vesting.ErrScheduleNotFound) {
			t.Fatalf("change destination on unknown id = %v, want ErrScheduleNotFound", err)
		}
		if err := v.ChangeOwner(ctx, ownerA, 9999, ownerB); !errors.Is(err, vesting.ErrScheduleNotFound) {
			t.Fatalf("change owner on unknown id = %v, want ErrScheduleNotFound", err)
		}
	})
}

func TestZeroOwnerFreezesSchedule(t *testing.T) {
	v, bank, clock := newTestEngine(t)
	ctx := context.Background()

	t.Run("renounced ownership is terminal", func(t *testing.T) {
		sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
			tranches([2]uint64{100, 20}))
		if err != nil {
			t.Fatal(err)
		}

		if err := v.ChangeOwner(ctx, ownerA, sid, vesting.NilAddress); err != nil {
			t.Fatalf("renounce ownership: %v", err)
		}

		for _, caller := range []types.Address{ownerA, ownerB, destA} {
			if err := v.ChangeDestination(ctx, caller, sid, destB); !errors.Is(err, vesting.ErrUnauthorized) {
				t.Fatalf("change destination by %s after renounce = %v, want ErrUnauthorized", caller, err)
			}
			if err := v.ChangeOwner(ctx, caller, sid, caller); !errors.Is(err, vesting.ErrUnauthorized) {
				t.Fatalf("change owner by %s after renounce = %v, want ErrUnauthorized", caller, err)
			}
		}
	})

	t.Run("ownerless schedule still vests", func(t *testing.T) {
		sid, err := v.Create(ctx, tokenGLD, vesting.NilAddress, sourceA, destA,
			tranches([2]uint64{300, 25}))
		if err != nil {
			t.Fatalf("create without owner: %v", err)
		}

		if err := v.ChangeDestination(ctx, sourceA, sid, destB); !errors.Is(err, vesting.ErrUnauthorized) {
			t.Fatalf("change destination on ownerless schedule = %v, want ErrUnauthorized", err)
		}

		before := bank.BalanceOf(tokenGLD, destA)
		clock.Advance(301 * time.Second)
		if err := v.Unlock(ctx, sid); err != nil {
			t.Fatalf("unlock ownerless schedule: %v", err)
		}
		if got := bank.BalanceOf(tokenGLD, destA); got != before+25 {
			t.Fatalf("destination balance = %d, want %d", got, before+25)
		}
	})
}

func TestUnlockUnknownSchedule(t *testing.T) {
	v, _, _ := newTestEngine(t)

	if err := v.Unlock(context.Background(), 42); !errors.Is(err, vesting.ErrScheduleNotFound) {
		t.Fatalf("unlock unknown id = %v, want ErrScheduleNotFound", err)
	}
}

func TestViewsOnUnknownSchedule(t *testing.T) {
	v, _, _ := newTestEngine(t)
	ctx := context.Background()

	const unknown = id.ScheduleID(42)

	if got, err := v.TokenOf(ctx, unknown); err != nil || !got.IsZero() {
		t.Fatalf("token of unknown id = (%q, %v), want zero address", got, err)
	}
	if got, err := v.OwnerOf(ctx, unknown); err != nil || !got.IsZero() {
		t.Fatalf("owner of unknown id = (%q, %v), want zero address", got, err)
	}
	if got, err := v.DestinationOf(ctx, unknown); err != nil || !got.IsZero() {
		t.Fatalf("destination of unknown id = (%q, %v), want zero address", got, err)
	}
	if got, err := v.TranchesOf(ctx, unknown); err != nil || len(got) != 0 {
		t.Fatalf("tranches of unknown id = (%v, %v), want empty", got, err)
	}
	if exists, err := v.Exists(ctx, unknown); err != nil || exists {
		t.Fatalf("exists for unknown id = (%v, %v), want false", exists, err)
	}
}

func TestReentrantUnlockIsNoOp(t *testing.T) {
	v, bank, clock := newTestEngine(t)
	ctx := context.Background()

	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 40}))
	if err != nil {
		t.Fatal(err)
	}

	// Reenter the engine from inside the outbound push. The tranche was
	// zeroed before the push started, so the nested call must see nothing
	// left to release.
	var nested error
	reentered := false
	bank.OnPush = func(ctx context.Context, _, _ types.Address, _ types.Amount) {
		if reentered {
			return
		}
		reentered = true
		nested = v.Unlock(ctx, sid)
	}

	clock.Advance(11 * time.Second)
	if err := v.Unlock(ctx, sid); err != nil {
		t.Fatalf("outer unlock: %v", err)
	}
	if !reentered {
		t.Fatal("push hook never ran")
	}
	if !errors.Is(nested, vesting.ErrNoUnlocksAvailable) {
		t.Fatalf("reentrant unlock = %v, want ErrNoUnlocksAvailable", nested)
	}

	// Paid exactly once.
	if got := bank.BalanceOf(tokenGLD, destA); got != 40 {
		t.Fatalf("destination balance = %d, want 40", got)
	}
	if got := bank.EscrowOf(tokenGLD); got != 0 {
		t.Fatalf("escrow = %d, want 0", got)
	}
}

func TestConcurrentUnlockPaysOnce(t *testing.T) {
	v, bank, clock := newTestEngine(t)
	ctx := context.Background()

	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 100}))
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(11 * time.Second)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = v.Unlock(ctx, sid)
		}(i)
	}
	wg.Wait()

	paid := 0
	for i, err := range errs {
		switch {
		case err == nil:
			paid++
		case errors.Is(err, vesting.ErrNoUnlocksAvailable):
		default:
			t.Fatalf("unlock %d: %v", i, err)
		}
	}
	if paid != 1 {
		t.Fatalf("%d unlocks paid out, want exactly 1", paid)
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != 100 {
		t.Fatalf("destination balance = %d, want 100", got)
	}
}

func TestPushFailureIsFatal(t *testing.T) {
	v, bank, clock := newTestEngine(t)
	ctx := context.Background()

	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 50}))
	if err != nil {
		t.Fatal(err)
	}

	bank.FailPushes = true
	clock.Advance(11 * time.Second)

	err = v.Unlock(ctx, sid)
	if err == nil {
		t.Fatal("unlock with rejected push returned nil")
	}

	// A rejected push after zeroing is an accounting divergence, never the
	// recoverable no-op sentinel.
	var inv *vesting.InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("unlock with rejected push = %v, want *InvariantError", err)
	}
	if !vesting.IsFatal(err) {
		t.Fatalf("IsFatal(%v) = false, want true", err)
	}
	if errors.Is(err, vesting.ErrNoUnlocksAvailable) {
		t.Fatal("fatal divergence must not match ErrNoUnlocksAvailable")
	}
	if inv.Op != "unlock" || inv.ID != sid {
		t.Fatalf("InvariantError carries (%q, %s), want (\"unlock\", %s)", inv.Op, inv.ID, sid)
	}

	// The tranche stays zeroed; amounts never grow back.
	trs, err := v.TranchesOf(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !trs[0].Released() {
		t.Fatalf("tranche amount = %d after fatal push, want 0", trs[0].Amount)
	}
	if got := bank.BalanceOf(tokenGLD, destA); got != 0 {
		t.Fatalf("destination balance = %d after rejected push, want 0", got)
	}
}

func TestScheduleIDsAreMonotonic(t *testing.T) {
	v, _, _ := newTestEngine(t)
	ctx := context.Background()

	var last id.ScheduleID
	for i := 0; i < 5; i++ {
		sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
			tranches([2]uint64{100, 10}))
		if err != nil {
			t.Fatal(err)
		}
		if sid <= last {
			t.Fatalf("id %s not greater than previous %s", sid, last)
		}
		last = sid
	}
}

// recorderPlugin captures engine lifecycle events for assertions.
type recorderPlugin struct {
	mu      sync.Mutex
	created []id.ScheduleID
	pushed  map[id.ScheduleID]types.Amount
	noops   []id.ScheduleID
	failed  []string
}

func (p *recorderPlugin) Name() string { return "recorder" }

func (p *recorderPlugin) OnScheduleCreated(_ context.Context, s *schedule.Schedule) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, s.ID)
	return nil
}

func (p *recorderPlugin) OnValueUnlocked(_ context.Context, sid id.ScheduleID, _ types.Address, amount types.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushed == nil {
		p.pushed = make(map[id.ScheduleID]types.Amount)
	}
	p.pushed[sid] += amount
	return nil
}

func (p *recorderPlugin) OnNoUnlocks(_ context.Context, sid id.ScheduleID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noops = append(p.noops, sid)
	return nil
}

func (p *recorderPlugin) OnTransferFailed(_ context.Context, _ id.ScheduleID, op string, _ error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, op)
	return nil
}

func TestPluginLifecycleEvents(t *testing.T) {
	rec := &recorderPlugin{}
	v, bank, clock := newTestEngine(t, vesting.WithPlugin(rec))
	ctx := context.Background()

	sid, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 30}))
	if err != nil {
		t.Fatal(err)
	}

	if err := v.Unlock(ctx, sid); !errors.Is(err, vesting.ErrNoUnlocksAvailable) {
		t.Fatalf("premature unlock = %v, want ErrNoUnlocksAvailable", err)
	}

	clock.Advance(11 * time.Second)
	if err := v.Unlock(ctx, sid); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	bank.FailPulls = true
	if _, err := v.Create(ctx, tokenGLD, ownerA, sourceA, destA,
		tranches([2]uint64{10, 5})); !errors.Is(err, vesting.ErrTransferFailed) {
		t.Fatalf("create with rejected pull = %v, want ErrTransferFailed", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.created) != 1 || rec.created[0] != sid {
		t.Fatalf("created events = %v, want [%s]", rec.created, sid)
	}
	if rec.pushed[sid] != 30 {
		t.Fatalf("unlocked amount event = %d, want 30", rec.pushed[sid])
	}
	if len(rec.noops) != 1 || rec.noops[0] != sid {
		t.Fatalf("no-op events = %v, want [%s]", rec.noops, sid)
	}
	if len(rec.failed) != 1 || rec.failed[0] != "create" {
		t.Fatalf("transfer-failed events = %v, want [create]", rec.failed)
	}
}
