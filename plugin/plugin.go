// Package plugin provides an extensible plugin system for VOYR Sub.
// Plugins hook into lifecycle events — this is how external indexing and
// notification layers observe credential state changes without the core
// ever depending on them.
package plugin

import (
	"context"
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
	OnInit(ctx context.Context, svc interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Credential lifecycle hooks
// ──────────────────────────────────────────────────

// OnCredentialIssued is called when a new credential id is assigned.
// The source account of an issuance is the zero account ("from nothing").
type OnCredentialIssued interface {
	Plugin
	OnCredentialIssued(ctx context.Context, account string, credentialID uint64) error
}

// OnCredentialRevoked is called when a credential is revoked and its id
// permanently retired. The destination is the zero account.
type OnCredentialRevoked interface {
	Plugin
	OnCredentialRevoked(ctx context.Context, account string, credentialID uint64) error
}

// OnSubscriptionExtended is called after every committed entitlement
// extension (purchase, renewal, or owner grant). The payload is the
// *receipt.Receipt recorded for the extension.
type OnSubscriptionExtended interface {
	Plugin
	OnSubscriptionExtended(ctx context.Context, rcpt interface{}) error
}

// OnPurchaseRolledBack is called when a committed extension was unwound
// because the external payment transfer failed.
type OnPurchaseRolledBack interface {
	Plugin
	OnPurchaseRolledBack(ctx context.Context, account string, planIndex int, cause error) error
}

// ──────────────────────────────────────────────────
// Plan catalog hooks
// ──────────────────────────────────────────────────

// OnPlanAdded is called when a plan is appended to the catalog.
type OnPlanAdded interface {
	Plugin
	OnPlanAdded(ctx context.Context, index int, p interface{}) error
}

// OnPlanModified is called when a plan is overwritten in place.
type OnPlanModified interface {
	Plugin
	OnPlanModified(ctx context.Context, index int, oldPlan, newPlan interface{}) error
}

// OnPlanRemoved is called when a plan is removed. Remaining indexes may
// have shifted: the former last plan now occupies the freed slot.
type OnPlanRemoved interface {
	Plugin
	OnPlanRemoved(ctx context.Context, index int) error
}

// ──────────────────────────────────────────────────
// Administrative hooks
// ──────────────────────────────────────────────────

// OnPaused is called when the owner pauses purchases.
type OnPaused interface {
	Plugin
	OnPaused(ctx context.Context) error
}

// OnResumed is called when the owner resumes purchases.
type OnResumed interface {
	Plugin
	OnResumed(ctx context.Context) error
}

// OnPaymentMediumChanged is called when an admin swaps the payment medium.
type OnPaymentMediumChanged interface {
	Plugin
	OnPaymentMediumChanged(ctx context.Context) error
}
