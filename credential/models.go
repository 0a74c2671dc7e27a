// Package credential defines the subscription ledger entry and the
// per-account credential lifecycle.
package credential

import (
	"github.com/voyr/voyr-sub/types"
)

// None is the reserved "no credential" id. Issued ids start at 1 and only
// ever increase; a retired id is never reassigned.
const None uint64 = 0

// Entry is the ledger record for one account.
//
// Holding a credential is not the same as being entitled: entitlement is the
// derived read Expiration >= now. Cleared entries (after revocation) remain
// addressable but empty.
type Entry struct {
	types.Entity
	Account      types.Account `json:"account"`
	CredentialID uint64        `json:"credential_id"` // None when no credential held
	// Expiration is a Unix-second timestamp; zero means none/expired.
	// Once set it only increases, or is cleared entirely by revocation.
	Expiration int64 `json:"expiration"`
}

// HoldsCredential reports whether the entry currently holds a credential id,
// regardless of expiration.
func (e Entry) HoldsCredential() bool { return e.CredentialID != None }

// ActiveAt reports whether the entry is entitled at the given Unix second.
func (e Entry) ActiveAt(now int64) bool {
	return e.HoldsCredential() && e.Expiration >= now
}

// State derives the lifecycle state of the entry at the given Unix second.
func (e Entry) State(now int64) State {
	switch {
	case !e.HoldsCredential():
		return StateNone
	case e.Expiration >= now:
		return StateActive
	default:
		return StateLapsed
	}
}
