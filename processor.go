package voyr

import (
	"context"
	"fmt"

	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/types"
)

// GrantPlanIndex is the PlanIndex recorded on grant receipts, which have no
// catalog plan behind them.
const GrantPlanIndex = -1

// Purchase buys periods of the plan at planIndex for the caller, issuing a
// credential first if the caller holds none. Payment moves cost units from
// the caller to the creator through the delegated payment medium.
func (s *Service) Purchase(ctx context.Context, caller types.Account, periods int64, planIndex int) (*receipt.Receipt, error) {
	return s.extend(ctx, caller, periods, planIndex, false, receipt.KindPurchase)
}

// Renew is Purchase for an account that already holds a credential; it
// fails with ErrNoCredentialOwned otherwise. Cost and extension math are
// identical.
func (s *Service) Renew(ctx context.Context, caller types.Account, periods int64, planIndex int) (*receipt.Receipt, error) {
	return s.extend(ctx, caller, periods, planIndex, true, receipt.KindRenewal)
}

// extend is the shared purchase/renewal path.
//
// Ordering is load-bearing: every ledger write commits and the lock is
// released BEFORE the external transfer, so a medium that re-enters the
// service mid-payment observes committed, paid state and cannot
// double-extend. A failed transfer triggers a compensating restore of the
// captured prior state.
func (s *Service) extend(ctx context.Context, caller types.Account, periods int64, planIndex int, requireHeld bool, kind receipt.Kind) (*receipt.Receipt, error) {
	caller = types.Normalize(caller)

	if periods < 1 {
		return nil, ErrInvalidDuration
	}

	s.mu.Lock()

	paused, err := s.store.Paused(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if paused {
		s.mu.Unlock()
		return nil, ErrCreatorPaused
	}

	pl, err := s.store.GetPlan(ctx, planIndex)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	cost, err := pl.Cost(periods)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cost: %v", ErrArithmeticOverflow, err)
	}
	extension, err := pl.Extension(periods)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: extension: %v", ErrArithmeticOverflow, err)
	}

	med := s.medium

	allowance, err := med.Allowance(ctx, caller, s.spender)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("voyr: allowance query: %w", err)
	}
	if allowance < cost {
		s.mu.Unlock()
		return nil, ErrInsufficientApproval
	}

	entry, err := s.store.GetEntry(ctx, caller)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if requireHeld && !entry.HoldsCredential() {
		s.mu.Unlock()
		return nil, ErrNoCredentialOwned
	}

	prior := entry
	issued := false
	var priorCounter uint64

	if !entry.HoldsCredential() {
		next, cerr := s.store.CredentialCounter(ctx)
		if cerr != nil {
			s.mu.Unlock()
			return nil, cerr
		}
		if cerr := s.store.SetCredentialCounter(ctx, next+1); cerr != nil {
			s.mu.Unlock()
			return nil, cerr
		}
		priorCounter = next
		entry.CredentialID = next
		entry.Entity = types.NewEntity()
		issued = true
	} else {
		entry.Touch()
	}

	now := s.now().Unix()
	newExpiration, err := nextExpiration(entry.Expiration, now, extension)
	if err != nil {
		if issued {
			_ = s.store.SetCredentialCounter(ctx, priorCounter) //nolint:errcheck // unwinding a staged allocation
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: expiration: %v", ErrArithmeticOverflow, err)
	}
	entry.Expiration = newExpiration

	if err := s.store.PutEntry(ctx, entry); err != nil {
		if issued {
			_ = s.store.SetCredentialCounter(ctx, priorCounter) //nolint:errcheck // unwinding a staged allocation
		}
		s.mu.Unlock()
		return nil, err
	}

	// Effects are committed; release the lock before the interaction so a
	// re-entrant medium can call back into the service.
	s.mu.Unlock()

	if err := med.TransferFrom(ctx, caller, s.creator, cost); err != nil {
		s.rollbackExtend(ctx, prior, issued, priorCounter)
		s.plugins.EmitPurchaseRolledBack(ctx, caller.String(), planIndex, err)
		s.logger.Warn("purchase rolled back",
			"account", caller.String(),
			"plan_index", planIndex,
			"cost", cost.Int64(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	rcpt := &receipt.Receipt{
		Entity:          types.NewEntity(),
		ID:              id.NewReceiptID(),
		Kind:            kind,
		Account:         caller,
		CredentialID:    entry.CredentialID,
		PlanIndex:       planIndex,
		PlanPrice:       pl.Price,
		DurationSeconds: pl.DurationSeconds,
		Periods:         periods,
		Cost:            cost,
		ExtensionSecs:   extension,
		NewExpiration:   newExpiration,
	}
	if err := s.store.AppendReceipt(ctx, rcpt); err != nil {
		// The payment already settled; a receipt write failure is logged,
		// never unwound into a refund.
		s.logger.Error("receipt append failed", "receipt_id", rcpt.ID.String(), "error", err)
	}

	if issued {
		s.plugins.EmitCredentialIssued(ctx, caller.String(), entry.CredentialID)
	}
	s.plugins.EmitSubscriptionExtended(ctx, rcpt)

	s.logger.Info("subscription extended",
		"kind", string(kind),
		"account", caller.String(),
		"credential_id", entry.CredentialID,
		"plan_index", planIndex,
		"periods", periods,
		"cost", cost.Int64(),
		"new_expiration", newExpiration,
	)

	return rcpt, nil
}

// rollbackExtend restores the pre-operation ledger state after a failed
// external transfer.
func (s *Service) rollbackExtend(ctx context.Context, prior credential.Entry, issued bool, priorCounter uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.PutEntry(ctx, prior); err != nil {
		s.logger.Error("rollback entry restore failed", "account", prior.Account.String(), "error", err)
	}
	if issued {
		if err := s.store.SetCredentialCounter(ctx, priorCounter); err != nil {
			s.logger.Error("rollback counter restore failed", "counter", priorCounter, "error", err)
		}
	}
}

// nextExpiration applies the expiration-extension law: active subscriptions
// stack from their current expiry, lapsed or fresh accounts start the clock
// from now. Overflow fails rather than wrapping.
func nextExpiration(current, now, extension int64) (int64, error) {
	base := now
	if current >= now {
		base = current
	}
	return types.AddSeconds(base, extension)
}
