// Package mediumtest provides in-memory fakes of the consumed external
// capabilities for use in tests.
package mediumtest

import (
	"context"
	"errors"
	"sync"

	"github.com/voyr/voyr-sub/medium"
	"github.com/voyr/voyr-sub/types"
)

// ErrTransferRejected is returned by a fake configured to fail transfers.
var ErrTransferRejected = errors.New("mediumtest: transfer rejected")

// Fake is an in-memory PaymentMedium with settable balances and allowances.
type Fake struct {
	mu          sync.Mutex
	balances    map[types.Account]types.Units
	allowances  map[[2]types.Account]types.Units
	totalIssued types.Units

	// FailTransfers makes every TransferFrom fail without moving units.
	FailTransfers bool

	// OnTransfer, when set, runs before each transfer commits. It exists to
	// simulate a re-entrant medium that calls back into the core mid-payment.
	OnTransfer func(ctx context.Context, owner, dest types.Account, amount types.Units) error

	transfers []Transfer
}

// Transfer records one executed delegated transfer.
type Transfer struct {
	Owner  types.Account
	Dest   types.Account
	Amount types.Units
}

var _ medium.PaymentMedium = (*Fake)(nil)

// New creates a Fake with the given total issued supply.
func New(totalIssued types.Units) *Fake {
	return &Fake{
		balances:    make(map[types.Account]types.Units),
		allowances:  make(map[[2]types.Account]types.Units),
		totalIssued: totalIssued,
	}
}

// SetBalance sets an account's spendable balance.
func (f *Fake) SetBalance(a types.Account, amount types.Units) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[a] = amount
}

// Approve sets the delegated allowance from owner to spender.
func (f *Fake) Approve(owner, spender types.Account, amount types.Units) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allowances[[2]types.Account{owner, spender}] = amount
}

// Allowance implements medium.PaymentMedium.
func (f *Fake) Allowance(_ context.Context, owner, spender types.Account) (types.Units, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allowances[[2]types.Account{owner, spender}], nil
}

// TransferFrom implements medium.PaymentMedium.
func (f *Fake) TransferFrom(ctx context.Context, owner, dest types.Account, amount types.Units) error {
	if f.FailTransfers {
		return ErrTransferRejected
	}
	if f.OnTransfer != nil {
		if err := f.OnTransfer(ctx, owner, dest, amount); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[owner] < amount {
		return ErrTransferRejected
	}
	f.balances[owner] -= amount
	f.balances[dest] += amount
	f.transfers = append(f.transfers, Transfer{Owner: owner, Dest: dest, Amount: amount})
	return nil
}

// TotalIssuedUnits implements medium.PaymentMedium.
func (f *Fake) TotalIssuedUnits(context.Context) (types.Units, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalIssued, nil
}

// BalanceOf reports an account's current balance.
func (f *Fake) BalanceOf(a types.Account) types.Units {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[a]
}

// Transfers returns the executed transfers in order.
func (f *Fake) Transfers() []Transfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transfer, len(f.transfers))
	copy(out, f.transfers)
	return out
}

// RotatingAuthority is an AuthorityProvider whose owner can be swapped,
// mirroring the external single-owner authority pattern.
type RotatingAuthority struct {
	mu    sync.Mutex
	owner types.Account
}

var _ medium.AuthorityProvider = (*RotatingAuthority)(nil)

// NewAuthority creates a RotatingAuthority with the given initial owner.
func NewAuthority(owner types.Account) *RotatingAuthority {
	return &RotatingAuthority{owner: owner}
}

// CurrentOwner implements medium.AuthorityProvider.
func (r *RotatingAuthority) CurrentOwner(context.Context) (types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner, nil
}

// TransferPrivilege rotates the owner account.
func (r *RotatingAuthority) TransferPrivilege(next types.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owner = next
}
