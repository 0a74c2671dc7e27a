package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so each emit walks only the plugins that
// implement the corresponding hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onCredentialIssued     []OnCredentialIssued
	onCredentialRevoked    []OnCredentialRevoked
	onSubscriptionExtended []OnSubscriptionExtended
	onPurchaseRolledBack   []OnPurchaseRolledBack
	onPlanAdded            []OnPlanAdded
	onPlanModified         []OnPlanModified
	onPlanRemoved          []OnPlanRemoved
	onPaused               []OnPaused
	onResumed              []OnResumed
	onPaymentMediumChanged []OnPaymentMediumChanged
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
	if v, ok := p.(OnCredentialIssued); ok {
		r.onCredentialIssued = append(r.onCredentialIssued, v)
	}
	if v, ok := p.(OnCredentialRevoked); ok {
		r.onCredentialRevoked = append(r.onCredentialRevoked, v)
	}
	if v, ok := p.(OnSubscriptionExtended); ok {
		r.onSubscriptionExtended = append(r.onSubscriptionExtended, v)
	}
	if v, ok := p.(OnPurchaseRolledBack); ok {
		r.onPurchaseRolledBack = append(r.onPurchaseRolledBack, v)
	}
	if v, ok := p.(OnPlanAdded); ok {
		r.onPlanAdded = append(r.onPlanAdded, v)
	}
	if v, ok := p.(OnPlanModified); ok {
		r.onPlanModified = append(r.onPlanModified, v)
	}
	if v, ok := p.(OnPlanRemoved); ok {
		r.onPlanRemoved = append(r.onPlanRemoved, v)
	}
	if v, ok := p.(OnPaused); ok {
		r.onPaused = append(r.onPaused, v)
	}
	if v, ok := p.(OnResumed); ok {
		r.onResumed = append(r.onResumed, v)
	}
	if v, ok := p.(OnPaymentMediumChanged); ok {
		r.onPaymentMediumChanged = append(r.onPaymentMediumChanged, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())

	return nil
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
func (r *Registry) EmitInit(ctx context.Context, svc interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, svc)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
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
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitCredentialIssued emits a credential issued event.
func (r *Registry) EmitCredentialIssued(ctx context.Context, account string, credentialID uint64) {
	r.mu.RLock()
	plugins := r.onCredentialIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCredentialIssued(ctx, account, credentialID)
		}); err != nil {
			r.logger.Warn("plugin OnCredentialIssued failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitCredentialRevoked emits a credential revoked event.
func (r *Registry) EmitCredentialRevoked(ctx context.Context, account string, credentialID uint64) {
	r.mu.RLock()
	plugins := r.onCredentialRevoked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCredentialRevoked(ctx, account, credentialID)
		}); err != nil {
			r.logger.Warn("plugin OnCredentialRevoked failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSubscriptionExtended emits a subscription extended event.
func (r *Registry) EmitSubscriptionExtended(ctx context.Context, rcpt interface{}) {
	r.mu.RLock()
	plugins := r.onSubscriptionExtended
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscriptionExtended(ctx, rcpt)
		}); err != nil {
			r.logger.Warn("plugin OnSubscriptionExtended failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPurchaseRolledBack emits a purchase rolled back event.
func (r *Registry) EmitPurchaseRolledBack(ctx context.Context, account string, planIndex int, cause error) {
	r.mu.RLock()
	plugins := r.onPurchaseRolledBack
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPurchaseRolledBack(ctx, account, planIndex, cause)
		}); err != nil {
			r.logger.Warn("plugin OnPurchaseRolledBack failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPlanAdded emits a plan added event.
func (r *Registry) EmitPlanAdded(ctx context.Context, index int, pl interface{}) {
	r.mu.RLock()
	plugins := r.onPlanAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanAdded(ctx, index, pl)
		}); err != nil {
			r.logger.Warn("plugin OnPlanAdded failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPlanModified emits a plan modified event.
func (r *Registry) EmitPlanModified(ctx context.Context, index int, oldPlan, newPlan interface{}) {
	r.mu.RLock()
	plugins := r.onPlanModified
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanModified(ctx, index, oldPlan, newPlan)
		}); err != nil {
			r.logger.Warn("plugin OnPlanModified failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPlanRemoved emits a plan removed event.
func (r *Registry) EmitPlanRemoved(ctx context.Context, index int) {
	r.mu.RLock()
	plugins := r.onPlanRemoved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanRemoved(ctx, index)
		}); err != nil {
			r.logger.Warn("plugin OnPlanRemoved failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaused emits a paused event.
func (r *Registry) EmitPaused(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaused(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnPaused failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitResumed emits a resumed event.
func (r *Registry) EmitResumed(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onResumed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnResumed(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnResumed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaymentMediumChanged emits a payment medium changed event.
func (r *Registry) EmitPaymentMediumChanged(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onPaymentMediumChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentMediumChanged(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentMediumChanged failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block a ledger operation indefinitely.
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
