// Package audithook bridges Vesting lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnScheduleCreated    = (*Extension)(nil)
	_ plugin.OnValueUnlocked      = (*Extension)(nil)
	_ plugin.OnNoUnlocks          = (*Extension)(nil)
	_ plugin.OnDestinationChanged = (*Extension)(nil)
	_ plugin.OnOwnerChanged       = (*Extension)(nil)
	_ plugin.OnTransferFailed     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Vesting lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Schedule lifecycle hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated implements plugin.OnScheduleCreated.
func (e *Extension) OnScheduleCreated(ctx context.Context, s *schedule.Schedule) error {
	return e.record(ctx, ActionScheduleCreated, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, s.ID.String(), CategoryEscrow, nil,
		"token", s.Token.String(),
		"owner", s.Owner.String(),
		"destination", s.Destination.String(),
		"tranches", len(s.Tranches),
		"total", s.Remaining().String(),
	)
}

// OnValueUnlocked implements plugin.OnValueUnlocked.
func (e *Extension) OnValueUnlocked(ctx context.Context, sid id.ScheduleID, destination types.Address, amount types.Amount) error {
	return e.record(ctx, ActionValueUnlocked, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, sid.String(), CategoryEscrow, nil,
		"destination", destination.String(),
		"amount", amount.String(),
	)
}

// OnNoUnlocks implements plugin.OnNoUnlocks.
func (e *Extension) OnNoUnlocks(ctx context.Context, sid id.ScheduleID) error {
	return e.record(ctx, ActionUnlockNoop, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, sid.String(), CategoryEscrow, nil,
		"event", "unlock_noop",
	)
}

// ──────────────────────────────────────────────────
// Delegation hooks
// ──────────────────────────────────────────────────

// OnDestinationChanged implements plugin.OnDestinationChanged.
func (e *Extension) OnDestinationChanged(ctx context.Context, sid id.ScheduleID, old, updated types.Address) error {
	return e.record(ctx, ActionDestinationChanged, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, sid.String(), CategoryDelegation, nil,
		"old_destination", old.String(),
		"new_destination", updated.String(),
	)
}

// OnOwnerChanged implements plugin.OnOwnerChanged.
func (e *Extension) OnOwnerChanged(ctx context.Context, sid id.ScheduleID, old, updated types.Address) error {
	severity := SeverityInfo
	if updated.IsZero() {
		// Renounced ownership permanently freezes the destination.
		severity = SeverityWarning
	}
	return e.record(ctx, ActionOwnerChanged, severity, OutcomeSuccess,
		ResourceSchedule, sid.String(), CategoryDelegation, nil,
		"old_owner", old.String(),
		"new_owner", updated.String(),
	)
}

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransferFailed implements plugin.OnTransferFailed.
func (e *Extension) OnTransferFailed(ctx context.Context, sid id.ScheduleID, op string, failure error) error {
	// A rejected pull during create is rolled back; a rejected push after
	// zeroing is an accounting divergence.
	severity := SeverityWarning
	if op == "unlock" {
		severity = SeverityCritical
	}
	return e.record(ctx, ActionTransferFailed, severity, OutcomeFailure,
		ResourceTransfer, sid.String(), CategoryTransfer, failure,
		"op", op,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
