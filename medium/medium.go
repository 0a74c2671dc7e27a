// Package medium defines the external capabilities the subscription core
// consumes: the delegated-balance payment medium and the authority provider.
//
// Both are consumed, never implemented here. Callers inject concrete
// adapters at wiring time; the mediumtest subpackage provides in-memory
// fakes for tests.
package medium

import (
	"context"

	"github.com/voyr/voyr-sub/types"
)

// PaymentMedium is the delegated balance-transfer service purchases are
// funded through. The core uses exactly three operations; the medium's
// internal accounting is its own business.
type PaymentMedium interface {
	// Allowance reports how many units spender may move on owner's behalf.
	Allowance(ctx context.Context, owner, spender types.Account) (types.Units, error)

	// TransferFrom moves amount units from owner to dest under a previously
	// delegated approval. A returned error means no units moved.
	TransferFrom(ctx context.Context, owner, dest types.Account, amount types.Units) error

	// TotalIssuedUnits reports the medium's total issued supply. Used only
	// as a crude existence probe when the medium is reconfigured.
	TotalIssuedUnits(ctx context.Context) (types.Units, error)
}

// AuthorityProvider exposes the single rotatable privileged account.
type AuthorityProvider interface {
	CurrentOwner(ctx context.Context) (types.Account, error)
}

// AuthorityProviderFunc adapts a plain function to an AuthorityProvider.
type AuthorityProviderFunc func(ctx context.Context) (types.Account, error)

// CurrentOwner implements AuthorityProvider.
func (f AuthorityProviderFunc) CurrentOwner(ctx context.Context) (types.Account, error) {
	return f(ctx)
}

// StaticAuthority returns an AuthorityProvider that always reports the
// given account. Useful when the owner never rotates.
func StaticAuthority(owner types.Account) AuthorityProvider {
	return AuthorityProviderFunc(func(context.Context) (types.Account, error) {
		return owner, nil
	})
}
