// Package extension provides the Forge extension adapter for Vesting.
//
// It implements the forge.Extension interface to integrate Vesting
// into a Forge application with automatic DI registration and
// lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.vesting" or "vesting" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/ledger"
	"github.com/xraph/vesting/store"
	"github.com/xraph/vesting/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "vesting"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Token-vesting escrow engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Vesting as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	engine      *vesting.Engine
	store       store.Store
	bank        ledger.Ledger
	vestingOpts []vesting.Option
}

// New creates a new Vesting Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Vesting engine.
// This is nil until Register is called.
func (e *Extension) Engine() *vesting.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the vesting engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// The value ledger is the host's side of the escrow contract; there is
	// no meaningful default.
	if e.bank == nil {
		return errors.New("vesting: no value ledger configured; use extension.WithLedger")
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	e.engine = vesting.New(e.store, e.bank, e.vestingOpts...)

	return vessel.Provide(fapp.Container(), func() (*vesting.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("vesting: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("vesting: store not initialized")
	}
	return e.store.Ping(ctx)
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("vesting: configuration is required but not found in config files; " +
				"ensure 'extensions.vesting' or 'vesting' key exists in your config")
		}
		e.config = programmaticConfig
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("vesting: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.vesting" first (namespaced pattern).
	if cm.IsSet("extensions.vesting") {
		if err := cm.Bind("extensions.vesting", &cfg); err == nil {
			e.Logger().Debug("vesting: loaded config from file",
				forge.F("key", "extensions.vesting"),
			)
			return cfg, true
		}
		e.Logger().Warn("vesting: failed to bind extensions.vesting config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "vesting" key.
	if cm.IsSet("vesting") {
		if err := cm.Bind("vesting", &cfg); err == nil {
			e.Logger().Debug("vesting: loaded config from file",
				forge.F("key", "vesting"),
			)
			return cfg, true
		}
		e.Logger().Warn("vesting: failed to bind vesting config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	yamlConfig.RequireConfig = programmaticConfig.RequireConfig
	return yamlConfig
}
