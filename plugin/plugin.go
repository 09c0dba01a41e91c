// Package plugin provides an extensible plugin system for Vesting.
// Plugins can hook into schedule lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Schedule lifecycle hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated is called after a schedule is created and its total
// has been pulled into escrow.
type OnScheduleCreated interface {
	Plugin
	OnScheduleCreated(ctx context.Context, s *schedule.Schedule) error
}

// OnValueUnlocked is called after matured tranches were zeroed and their
// total pushed to the schedule's destination.
type OnValueUnlocked interface {
	Plugin
	OnValueUnlocked(ctx context.Context, sid id.ScheduleID, destination types.Address, amount types.Amount) error
}

// OnNoUnlocks is called when an unlock attempt found nothing matured.
type OnNoUnlocks interface {
	Plugin
	OnNoUnlocks(ctx context.Context, sid id.ScheduleID) error
}

// ──────────────────────────────────────────────────
// Delegation hooks
// ──────────────────────────────────────────────────

// OnDestinationChanged is called after the owner redirects a schedule's
// destination.
type OnDestinationChanged interface {
	Plugin
	OnDestinationChanged(ctx context.Context, sid id.ScheduleID, old, updated types.Address) error
}

// OnOwnerChanged is called after a schedule's owner is replaced. The new
// owner may be the zero address, which permanently freezes the destination.
type OnOwnerChanged interface {
	Plugin
	OnOwnerChanged(ctx context.Context, sid id.ScheduleID, old, updated types.Address) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnTransferFailed is called when the value ledger rejects a transfer:
// a pull during create (op "create", recoverable, rolled back) or a push
// during unlock (op "unlock", fatal accounting divergence).
type OnTransferFailed interface {
	Plugin
	OnTransferFailed(ctx context.Context, sid id.ScheduleID, op string, err error) error
}
