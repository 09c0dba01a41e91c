package audithook

// Action constants for audit events.
const (
	// Schedule actions
	ActionScheduleCreated = "schedule.created"

	// Release actions
	ActionValueUnlocked = "schedule.unlocked"
	ActionUnlockNoop    = "schedule.unlock_noop"

	// Delegation actions
	ActionDestinationChanged = "destination.changed"
	ActionOwnerChanged       = "owner.changed"

	// Transfer actions
	ActionTransferFailed = "transfer.failed"
)

// Resource constants for audit events.
const (
	ResourceSchedule = "schedule"
	ResourceTransfer = "transfer"
)

// Category constants for audit events.
const (
	CategoryEscrow     = "escrow"
	CategoryDelegation = "delegation"
	CategoryTransfer   = "transfer"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
