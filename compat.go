package voyr

import (
	"context"

	"github.com/voyr/voyr-sub/types"
)

// Credentials are deliberately non-transferable: the generic
// capability-transfer surface that token-interface consumers expect is kept
// for compatibility, but every transfer and approval operation here accepts
// its input and changes nothing. Query forms report that no approval exists.
//
// This is a narrow, explicit no-op surface — not inherited behavior — so the
// non-transferability invariant cannot be bypassed by any reachable call.

// Transfer accepts a transfer request and performs no state change.
func (s *Service) Transfer(ctx context.Context, caller, to types.Account, credentialID uint64) error {
	s.logger.Debug("transfer ignored: credentials are non-transferable",
		"caller", caller.String(),
		"to", to.String(),
		"credential_id", credentialID,
	)
	return nil
}

// TransferCredential accepts a delegated transfer request and performs no
// state change.
func (s *Service) TransferCredential(ctx context.Context, caller, from, to types.Account, credentialID uint64) error {
	s.logger.Debug("transfer ignored: credentials are non-transferable",
		"caller", caller.String(),
		"from", from.String(),
		"to", to.String(),
		"credential_id", credentialID,
	)
	return nil
}

// Approve accepts an approval request and performs no state change.
func (s *Service) Approve(ctx context.Context, caller, approved types.Account, credentialID uint64) error {
	s.logger.Debug("approval ignored: credentials are non-transferable",
		"caller", caller.String(),
		"approved", approved.String(),
		"credential_id", credentialID,
	)
	return nil
}

// SetApprovalForAll accepts an operator approval request and performs no
// state change.
func (s *Service) SetApprovalForAll(ctx context.Context, caller, operator types.Account, approved bool) error {
	s.logger.Debug("operator approval ignored: credentials are non-transferable",
		"caller", caller.String(),
		"operator", operator.String(),
		"approved", approved,
	)
	return nil
}

// GetApproved reports that no account is ever approved for a credential.
func (s *Service) GetApproved(_ context.Context, _ uint64) (types.Account, error) {
	return types.ZeroAccount, nil
}

// IsApprovedForAll reports that operator approvals are never granted.
func (s *Service) IsApprovedForAll(_ context.Context, _, _ types.Account) (bool, error) {
	return false, nil
}
