package extension

import (
	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/ledger"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/store"
)

// Option configures the Vesting Forge extension.
type Option func(*Extension)

// WithStore sets the schedule store for the vesting engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedger sets the value ledger the engine escrows through.
// The extension cannot start without one.
func WithLedger(l ledger.Ledger) Option {
	return func(e *Extension) {
		e.bank = l
	}
}

// WithVestingOption passes a vesting.Option through to the underlying engine.
func WithVestingOption(opt vesting.Option) Option {
	return func(e *Extension) {
		e.vestingOpts = append(e.vestingOpts, opt)
	}
}

// WithPlugin registers a vesting plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.vestingOpts = append(e.vestingOpts, vesting.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
