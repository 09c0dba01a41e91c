// Package vesting provides an embeddable token-vesting escrow engine for Go
// applications.
//
// Vesting is designed as a library, not a service. Import it directly into
// your Go application and wire it to your own value ledger. It provides:
//
//   - Tranche-based vesting schedules with strict release ordering
//   - Escrow accounting through a pluggable value ledger
//   - All-or-nothing schedule creation with automatic rollback
//   - Idempotent unlocks with effects-before-interactions sequencing
//   - Owner-delegated destination and ownership transfer
//   - Pluggable lifecycle hooks for audit and metrics
//
// # Quick Start
//
// Create an engine with your preferred store and your ledger adapter:
//
//	import (
//	    "github.com/xraph/vesting"
//	    "github.com/xraph/vesting/store/postgres"
//	)
//
//	// Initialize store
//	store, err := postgres.New(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine; bank implements vesting.Ledger
//	v := vesting.New(store, bank)
//
//	// Start the engine (runs store migrations)
//	if err := v.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Stop()
//
// # Core Concepts
//
// Schedules lock a committed total of one token and release it in tranches:
//
//	sid, err := v.Create(ctx, token, owner, source, destination,
//	    []vesting.Tranche{
//	        {ReleaseTime: cliff, Amount: 400},
//	        {ReleaseTime: cliff.AddDate(1, 0, 0), Amount: 600},
//	    })
//
// Creation pulls the full total from source into escrow up front. If the
// ledger rejects the pull, the schedule is rolled back and its id is burned.
//
// Unlock releases everything matured so far to the schedule's destination:
//
//	err := v.Unlock(ctx, sid)
//	if errors.Is(err, vesting.ErrNoUnlocksAvailable) {
//	    // nothing matured yet, or already released — safe to retry later
//	}
//
// Unlock is idempotent: released tranches are zeroed in place, and a second
// call before the next release time is a clean no-op.
//
// Owners delegate:
//
//	err := v.ChangeDestination(ctx, owner, sid, newDestination)
//	err  = v.ChangeOwner(ctx, owner, sid, vesting.NilAddress) // freeze forever
//
// A schedule created with the zero owner, or whose owner was set to zero,
// has a permanently fixed destination.
//
// # Accounting Model
//
// The engine never holds value itself. It instructs the host's Ledger to
// pull committed totals into escrow and push unlocked value out, and it
// zeroes tranche records before any outbound push so that escrowed value
// always equals the sum of unreleased tranche amounts. A push the ledger
// rejects after zeroing is surfaced as *InvariantError and must be treated
// as fatal by the host.
//
// All amounts use unsigned integer arithmetic in the token's smallest unit;
// schedule totals are overflow-checked at creation.
package vesting
