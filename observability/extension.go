// Package observability provides a metrics extension for Vesting that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnScheduleCreated    = (*MetricsExtension)(nil)
	_ plugin.OnValueUnlocked      = (*MetricsExtension)(nil)
	_ plugin.OnNoUnlocks          = (*MetricsExtension)(nil)
	_ plugin.OnDestinationChanged = (*MetricsExtension)(nil)
	_ plugin.OnOwnerChanged       = (*MetricsExtension)(nil)
	_ plugin.OnTransferFailed     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Vesting plugin to automatically track escrow metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Schedule metrics
	ScheduleCreated Counter
	ScheduleTotal   Histogram
	TrancheCount    Histogram

	// Release metrics
	ValueUnlocked  Counter
	UnlockedAmount Histogram
	UnlockNoops    Counter

	// Delegation metrics
	DestinationChanged Counter
	OwnerChanged       Counter
	OwnerRenounced     Counter

	// Transfer metrics
	PullFailures Counter
	PushFailures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Schedule metrics
		ScheduleCreated: factory.Counter("vesting.schedule.created"),
		ScheduleTotal:   factory.Histogram("vesting.schedule.total_amount"),
		TrancheCount:    factory.Histogram("vesting.schedule.tranches"),

		// Release metrics
		ValueUnlocked:  factory.Counter("vesting.unlock.released"),
		UnlockedAmount: factory.Histogram("vesting.unlock.amount"),
		UnlockNoops:    factory.Counter("vesting.unlock.noops"),

		// Delegation metrics
		DestinationChanged: factory.Counter("vesting.delegation.destination_changed"),
		OwnerChanged:       factory.Counter("vesting.delegation.owner_changed"),
		OwnerRenounced:     factory.Counter("vesting.delegation.owner_renounced"),

		// Transfer metrics
		PullFailures: factory.Counter("vesting.transfer.pull_failures"),
		PushFailures: factory.Counter("vesting.transfer.push_failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Schedule lifecycle hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated implements plugin.OnScheduleCreated.
func (m *MetricsExtension) OnScheduleCreated(_ context.Context, s *schedule.Schedule) error {
	m.ScheduleCreated.Inc()
	m.ScheduleTotal.Observe(float64(s.Remaining()))
	m.TrancheCount.Observe(float64(len(s.Tranches)))
	return nil
}

// ──────────────────────────────────────────────────
// Release lifecycle hooks
// ──────────────────────────────────────────────────

// OnValueUnlocked implements plugin.OnValueUnlocked.
func (m *MetricsExtension) OnValueUnlocked(_ context.Context, _ id.ScheduleID, _ types.Address, amount types.Amount) error {
	m.ValueUnlocked.Inc()
	m.UnlockedAmount.Observe(float64(amount))
	return nil
}

// OnNoUnlocks implements plugin.OnNoUnlocks.
func (m *MetricsExtension) OnNoUnlocks(_ context.Context, _ id.ScheduleID) error {
	m.UnlockNoops.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Delegation lifecycle hooks
// ──────────────────────────────────────────────────

// OnDestinationChanged implements plugin.OnDestinationChanged.
func (m *MetricsExtension) OnDestinationChanged(_ context.Context, _ id.ScheduleID, _, _ types.Address) error {
	m.DestinationChanged.Inc()
	return nil
}

// OnOwnerChanged implements plugin.OnOwnerChanged.
func (m *MetricsExtension) OnOwnerChanged(_ context.Context, _ id.ScheduleID, _, updated types.Address) error {
	m.OwnerChanged.Inc()
	if updated.IsZero() {
		m.OwnerRenounced.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Transfer lifecycle hooks
// ──────────────────────────────────────────────────

// OnTransferFailed implements plugin.OnTransferFailed.
func (m *MetricsExtension) OnTransferFailed(_ context.Context, _ id.ScheduleID, op string, _ error) error {
	switch op {
	case "create":
		m.PullFailures.Inc()
	case "unlock":
		m.PushFailures.Inc()
	}
	return nil
}
