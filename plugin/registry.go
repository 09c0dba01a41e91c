package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onScheduleCreated    []OnScheduleCreated
	onValueUnlocked      []OnValueUnlocked
	onNoUnlocks          []OnNoUnlocks
	onDestinationChanged []OnDestinationChanged
	onOwnerChanged       []OnOwnerChanged
	onTransferFailed     []OnTransferFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnScheduleCreated); ok {
		r.onScheduleCreated = append(r.onScheduleCreated, v)
	}
	if v, ok := p.(OnValueUnlocked); ok {
		r.onValueUnlocked = append(r.onValueUnlocked, v)
	}
	if v, ok := p.(OnNoUnlocks); ok {
		r.onNoUnlocks = append(r.onNoUnlocks, v)
	}
	if v, ok := p.(OnDestinationChanged); ok {
		r.onDestinationChanged = append(r.onDestinationChanged, v)
	}
	if v, ok := p.(OnOwnerChanged); ok {
		r.onOwnerChanged = append(r.onOwnerChanged, v)
	}
	if v, ok := p.(OnTransferFailed); ok {
		r.onTransferFailed = append(r.onTransferFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnScheduleCreated)(nil)).Elem(), "OnScheduleCreated")
	checkInterface(reflect.TypeOf((*OnValueUnlocked)(nil)).Elem(), "OnValueUnlocked")
	checkInterface(reflect.TypeOf((*OnNoUnlocks)(nil)).Elem(), "OnNoUnlocks")
	checkInterface(reflect.TypeOf((*OnDestinationChanged)(nil)).Elem(), "OnDestinationChanged")
	checkInterface(reflect.TypeOf((*OnOwnerChanged)(nil)).Elem(), "OnOwnerChanged")
	checkInterface(reflect.TypeOf((*OnTransferFailed)(nil)).Elem(), "OnTransferFailed")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitScheduleCreated emits a schedule created event.
func (r *Registry) EmitScheduleCreated(ctx context.Context, s *schedule.Schedule) {
	r.mu.RLock()
	plugins := r.onScheduleCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnScheduleCreated(ctx, s)
		}); err != nil {
			r.logger.Warn("plugin OnScheduleCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitValueUnlocked emits a value unlocked event.
func (r *Registry) EmitValueUnlocked(ctx context.Context, sid id.ScheduleID, destination types.Address, amount types.Amount) {
	r.mu.RLock()
	plugins := r.onValueUnlocked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnValueUnlocked(ctx, sid, destination, amount)
		}); err != nil {
			r.logger.Warn("plugin OnValueUnlocked failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitNoUnlocks emits an empty-unlock event.
func (r *Registry) EmitNoUnlocks(ctx context.Context, sid id.ScheduleID) {
	r.mu.RLock()
	plugins := r.onNoUnlocks
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnNoUnlocks(ctx, sid)
		}); err != nil {
			r.logger.Warn("plugin OnNoUnlocks failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDestinationChanged emits a destination changed event.
func (r *Registry) EmitDestinationChanged(ctx context.Context, sid id.ScheduleID, old, updated types.Address) {
	r.mu.RLock()
	plugins := r.onDestinationChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDestinationChanged(ctx, sid, old, updated)
		}); err != nil {
			r.logger.Warn("plugin OnDestinationChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOwnerChanged emits an owner changed event.
func (r *Registry) EmitOwnerChanged(ctx context.Context, sid id.ScheduleID, old, updated types.Address) {
	r.mu.RLock()
	plugins := r.onOwnerChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOwnerChanged(ctx, sid, old, updated)
		}); err != nil {
			r.logger.Warn("plugin OnOwnerChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransferFailed emits a transfer failed event.
func (r *Registry) EmitTransferFailed(ctx context.Context, sid id.ScheduleID, op string, failure error) {
	r.mu.RLock()
	plugins := r.onTransferFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransferFailed(ctx, sid, op, failure)
		}); err != nil {
			r.logger.Warn("plugin OnTransferFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the escrow pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
