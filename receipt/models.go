// Package receipt defines the immutable audit rows written for every
// successful entitlement extension.
package receipt

import (
	"time"

	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/types"
)

// Kind distinguishes how an entitlement extension came about.
type Kind string

const (
	KindPurchase Kind = "purchase" // first purchase, credential issued in the same operation
	KindRenewal  Kind = "renewal"  // paid extension of an existing credential
	KindGrant    Kind = "grant"    // owner-granted extension, no payment step
)

// Receipt records one committed extension. Receipts are append-only: a
// purchase that rolls back writes none, and nothing ever mutates one.
type Receipt struct {
	types.Entity
	ID           id.ReceiptID  `json:"id"`
	Kind         Kind          `json:"kind"`
	Account      types.Account `json:"account"`
	CredentialID uint64        `json:"credential_id"`

	// Plan snapshot at purchase time. Catalog indexes are unstable, so the
	// price and duration are copied rather than referenced. Grants carry no
	// plan and record PlanIndex -1.
	PlanIndex       int         `json:"plan_index"`
	PlanPrice       types.Units `json:"plan_price"`
	DurationSeconds int64       `json:"duration_seconds"`

	Periods       int64       `json:"periods"`
	Cost          types.Units `json:"cost"`
	ExtensionSecs int64       `json:"extension_secs"`
	NewExpiration int64       `json:"new_expiration"`
}

// ListOpts filters receipt listings.
type ListOpts struct {
	Kind   Kind // empty = all kinds
	Since  time.Time
	Limit  int
	Offset int
}
