// Package ledger defines the external value-ledger collaborator interface.
//
// The vesting engine never holds value itself; it instructs a Ledger to
// move fungible balances in and out of the engine's escrow account. Any
// balance service supporting pull/push transfers can implement this
// interface. The engine treats the ledger as opaque: a transfer either
// succeeds or returns an error, and the engine never retries.
package ledger

import (
	"context"

	"github.com/xraph/vesting/types"
)

// Ledger moves fungible value between accounts and the engine's escrow.
//
// Implementations may, in principle, call back into the engine during a
// transfer. The engine defends against this by committing all of its state
// mutations before invoking Push, so reentrant calls observe final state.
type Ledger interface {
	// Pull moves amount units of token from the source account into the
	// engine's escrowed balance.
	Pull(ctx context.Context, token, from types.Address, amount types.Amount) error

	// Push moves amount units of token from the engine's escrowed balance
	// to the given account.
	Push(ctx context.Context, token, to types.Address, amount types.Amount) error
}
