// Package types provides common types used across VOYR Sub.
package types

import "strings"

// Account identifies a participant on the payment network.
// Accounts are opaque, case-insensitive identifiers; the empty string is
// the zero account ("from nothing" / "to nothing" in lifecycle events).
type Account string

// ZeroAccount is the zero-value account.
const ZeroAccount Account = ""

// IsZero returns true if the account is the zero account.
func (a Account) IsZero() bool { return a == ZeroAccount }

// String returns the account identifier.
func (a Account) String() string { return string(a) }

// Equal compares two accounts case-insensitively.
func (a Account) Equal(other Account) bool {
	return strings.EqualFold(string(a), string(other))
}

// Normalize returns the canonical (lowercase) form of the account.
func Normalize(a Account) Account {
	return Account(strings.ToLower(string(a)))
}
