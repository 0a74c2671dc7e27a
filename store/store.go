// Package store defines the unified storage interface for the subscription
// ledger state.
package store

import (
	"context"

	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/types"
)

// Store is the unified storage interface for all subscription state.
// Instead of embedding sub-interfaces, all methods are declared explicitly
// to avoid naming conflicts.
//
// The engine serializes every mutating operation, so implementations only
// need each individual method to be atomic, not whole operations. Catalog
// plans are keyed by dense integer index and RemovePlan must reproduce
// swap-with-last-then-shrink reindexing exactly.
type Store interface {
	// Plan catalog methods
	ListPlans(ctx context.Context) ([]plan.Plan, error)
	GetPlan(ctx context.Context, index int) (plan.Plan, error)
	AppendPlan(ctx context.Context, p plan.Plan) error
	SetPlan(ctx context.Context, index int, p plan.Plan) error
	// RemovePlan deletes the plan at index by moving the former last plan
	// into the freed slot and shrinking the catalog by one.
	RemovePlan(ctx context.Context, index int) error
	PlanCount(ctx context.Context) (int, error)

	// Ledger methods
	//
	// GetEntry returns a zero-valued entry (no credential, no expiration)
	// for accounts the ledger has never seen; absence is not an error.
	GetEntry(ctx context.Context, account types.Account) (credential.Entry, error)
	PutEntry(ctx context.Context, e credential.Entry) error
	// FindByCredential resolves a credential id to its holding entry.
	// Unassigned and retired ids both fail.
	FindByCredential(ctx context.Context, credID uint64) (credential.Entry, error)

	// Credential counter methods. The counter holds the NEXT id to issue,
	// starting at 1; it is read and advanced by the engine under its
	// operation lock.
	CredentialCounter(ctx context.Context) (uint64, error)
	SetCredentialCounter(ctx context.Context, next uint64) error

	// Pause flag methods
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error

	// Receipt methods
	AppendReceipt(ctx context.Context, r *receipt.Receipt) error
	ListReceipts(ctx context.Context, account types.Account, opts receipt.ListOpts) ([]*receipt.Receipt, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
