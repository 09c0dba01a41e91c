// Package memory provides an in-memory fungible-balance ledger.
//
// It is the reference Ledger implementation used in tests, demos, and
// single-process embeddings. Every transfer is recorded as a receipt with
// a TypeID identifier so external accounting can be reconciled against
// the engine's internal state.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/ledger"
	"github.com/xraph/vesting/types"
)

// Direction distinguishes pulls (into escrow) from pushes (out of escrow).
type Direction string

const (
	DirectionPull Direction = "pull"
	DirectionPush Direction = "push"
)

// Receipt records one completed transfer.
type Receipt struct {
	ID        id.ReceiptID
	Direction Direction
	Token     types.Address
	Account   types.Address // source for pulls, destination for pushes
	Amount    types.Amount
	At        time.Time
}

// compile-time interface check
var _ ledger.Ledger = (*Ledger)(nil)

// Ledger is an in-memory bank of per-token account balances plus a single
// escrow balance per token owned by the vesting engine.
//
// FailPulls and FailPushes force the next transfers to be rejected;
// OnPush, when set, runs after escrow is debited but before Push returns —
// both exist so engine tests can exercise rollback and reentrancy paths.
type Ledger struct {
	mu sync.Mutex

	balances map[types.Address]map[types.Address]types.Amount // token -> account -> balance
	escrow   map[types.Address]types.Amount                   // token -> escrowed balance
	receipts []Receipt

	FailPulls  bool
	FailPushes bool
	OnPush     func(ctx context.Context, token, to types.Address, amount types.Amount)
}

// New creates an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[types.Address]map[types.Address]types.Amount),
		escrow:   make(map[types.Address]types.Amount),
	}
}

// Mint credits an account balance out of thin air. Test/demo setup only.
func (l *Ledger) Mint(token, account types.Address, amount types.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts, ok := l.balances[token]
	if !ok {
		accounts = make(map[types.Address]types.Amount)
		l.balances[token] = accounts
	}
	next, ok := accounts[account].CheckedAdd(amount)
	if !ok {
		panic(fmt.Sprintf("memory ledger: mint overflow for %s/%s", token, account))
	}
	accounts[account] = next
}

// Pull implements ledger.Ledger.
func (l *Ledger) Pull(_ context.Context, token, from types.Address, amount types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailPulls {
		return fmt.Errorf("memory ledger: pull of %s %s from %s rejected", amount, token, from)
	}

	accounts := l.balances[token]
	if accounts[from] < amount {
		return fmt.Errorf("memory ledger: insufficient balance: %s has %s of %s, need %s",
			from, accounts[from], token, amount)
	}
	accounts[from] -= amount

	next, ok := l.escrow[token].CheckedAdd(amount)
	if !ok {
		// Undo the debit; the escrow pool cannot absorb the transfer.
		accounts[from] += amount
		return fmt.Errorf("memory ledger: escrow overflow for token %s", token)
	}
	l.escrow[token] = next

	l.receipts = append(l.receipts, Receipt{
		ID:        id.NewReceiptID(),
		Direction: DirectionPull,
		Token:     token,
		Account:   from,
		Amount:    amount,
		At:        time.Now().UTC(),
	})
	return nil
}

// Push implements ledger.Ledger.
func (l *Ledger) Push(ctx context.Context, token, to types.Address, amount types.Amount) error {
	l.mu.Lock()

	if l.FailPushes {
		l.mu.Unlock()
		return fmt.Errorf("memory ledger: push of %s %s to %s rejected", amount, token, to)
	}

	if l.escrow[token] < amount {
		l.mu.Unlock()
		return fmt.Errorf("memory ledger: escrow underflow: have %s of %s, need %s",
			l.escrow[token], token, amount)
	}
	l.escrow[token] -= amount

	accounts, ok := l.balances[token]
	if !ok {
		accounts = make(map[types.Address]types.Amount)
		l.balances[token] = accounts
	}
	next, ok := accounts[to].CheckedAdd(amount)
	if !ok {
		l.escrow[token] += amount
		l.mu.Unlock()
		return fmt.Errorf("memory ledger: balance overflow for %s/%s", token, to)
	}
	accounts[to] = next

	l.receipts = append(l.receipts, Receipt{
		ID:        id.NewReceiptID(),
		Direction: DirectionPush,
		Token:     token,
		Account:   to,
		Amount:    amount,
		At:        time.Now().UTC(),
	})

	hook := l.OnPush
	l.mu.Unlock()

	// Run outside the lock: the hook may call back into the engine, which
	// may call back into this ledger.
	if hook != nil {
		hook(ctx, token, to, amount)
	}
	return nil
}

// BalanceOf returns an account's balance for a token.
func (l *Ledger) BalanceOf(token, account types.Address) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[token][account]
}

// EscrowOf returns the engine's escrowed balance for a token.
func (l *Ledger) EscrowOf(token types.Address) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escrow[token]
}

// Receipts returns a copy of all recorded transfers, in order.
func (l *Ledger) Receipts() []Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Receipt, len(l.receipts))
	copy(out, l.receipts)
	return out
}
