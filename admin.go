package voyr

import (
	"context"
	"fmt"

	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/medium"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/types"
)

// ──────────────────────────────────────────────────
// Role gates
// ──────────────────────────────────────────────────

// requireOwner fails with ErrUnauthorized unless caller is the current
// privileged account reported by the authority provider.
func (s *Service) requireOwner(ctx context.Context, caller types.Account) error {
	owner, err := s.authority.CurrentOwner(ctx)
	if err != nil {
		return fmt.Errorf("voyr: authority query: %w", err)
	}
	if !caller.Equal(owner) {
		return ErrUnauthorized
	}
	return nil
}

// requireAdmin fails with ErrUnauthorized unless caller is the Creator or
// the current Owner. The two roles stay distinct: the Owner rotates via the
// authority provider while the Creator is fixed at construction.
func (s *Service) requireAdmin(ctx context.Context, caller types.Account) error {
	if caller.Equal(s.creator) {
		return nil
	}
	owner, err := s.authority.CurrentOwner(ctx)
	if err != nil {
		return fmt.Errorf("voyr: authority query: %w", err)
	}
	if caller.Equal(owner) {
		return nil
	}
	return ErrUnauthorized
}

// ──────────────────────────────────────────────────
// Plan catalog administration (Creator or Owner)
// ──────────────────────────────────────────────────

// AddPlan appends a new plan to the catalog. Price 0 (free plan) and
// duration 0 (degenerate zero-length extension) are both accepted.
func (s *Service) AddPlan(ctx context.Context, caller types.Account, price types.Units, durationSeconds int64) error {
	caller = types.Normalize(caller)
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	p := plan.Plan{
		Entity:          types.NewEntity(),
		Price:           price,
		DurationSeconds: durationSeconds,
	}
	if err := p.Validate(); err != nil {
		return ValidationError{Field: "plan", Message: err.Error()}
	}

	s.mu.Lock()
	count, err := s.store.PlanCount(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.AppendPlan(ctx, p); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.plugins.EmitPlanAdded(ctx, count, &p)
	s.logger.Info("plan added",
		"index", count,
		"price", price.Int64(),
		"duration_seconds", durationSeconds,
	)
	return nil
}

// ModifyPlan overwrites the plan at index in place.
func (s *Service) ModifyPlan(ctx context.Context, caller types.Account, price types.Units, durationSeconds int64, index int) error {
	caller = types.Normalize(caller)
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	p := plan.Plan{
		Entity:          types.NewEntity(),
		Price:           price,
		DurationSeconds: durationSeconds,
	}
	if err := p.Validate(); err != nil {
		return ValidationError{Field: "plan", Message: err.Error()}
	}

	s.mu.Lock()
	old, err := s.store.GetPlan(ctx, index)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.SetPlan(ctx, index, p); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.plugins.EmitPlanModified(ctx, index, &old, &p)
	s.logger.Info("plan modified",
		"index", index,
		"price", price.Int64(),
		"duration_seconds", durationSeconds,
	)
	return nil
}

// DeletePlan removes the plan at index. The plan previously at the last
// index moves into the freed slot — callers holding a stale index to the
// former last plan will silently address the wrong plan afterwards.
func (s *Service) DeletePlan(ctx context.Context, caller types.Account, index int) error {
	caller = types.Normalize(caller)
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.store.RemovePlan(ctx, index); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.plugins.EmitPlanRemoved(ctx, index)
	s.logger.Info("plan removed", "index", index)
	return nil
}

// SetPaymentMedium swaps the delegated payment medium. The new medium must
// report a non-zero issued-unit count — a weak existence heuristic, probed
// before the role gate and never strengthened into full conformance checking.
func (s *Service) SetPaymentMedium(ctx context.Context, caller types.Account, m medium.PaymentMedium) error {
	if m == nil {
		return ValidationError{Field: "medium", Message: "nil payment medium"}
	}

	total, err := m.TotalIssuedUnits(ctx)
	if err != nil {
		return fmt.Errorf("%w: probe: %v", ErrInvalidPaymentMedium, err)
	}
	if total.IsZero() {
		return ErrInvalidPaymentMedium
	}

	caller = types.Normalize(caller)
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}

	s.mu.Lock()
	s.medium = m
	s.mu.Unlock()

	s.plugins.EmitPaymentMediumChanged(ctx)
	s.logger.Info("payment medium changed", "caller", caller.String())
	return nil
}

// ──────────────────────────────────────────────────
// Owner-only control
// ──────────────────────────────────────────────────

// Pause blocks Purchase and Renew. Grants, revocations, and catalog
// administration are unaffected.
func (s *Service) Pause(ctx context.Context, caller types.Account) error {
	return s.setPaused(ctx, caller, true)
}

// Resume lifts a pause.
func (s *Service) Resume(ctx context.Context, caller types.Account) error {
	return s.setPaused(ctx, caller, false)
}

func (s *Service) setPaused(ctx context.Context, caller types.Account, paused bool) error {
	caller = types.Normalize(caller)
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}

	s.mu.Lock()
	current, err := s.store.Paused(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if current == paused {
		s.mu.Unlock()
		return nil
	}
	if err := s.store.SetPaused(ctx, paused); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if paused {
		s.plugins.EmitPaused(ctx)
		s.logger.Info("purchases paused")
	} else {
		s.plugins.EmitResumed(ctx)
		s.logger.Info("purchases resumed")
	}
	return nil
}

// Revoke clears the account's credential and expiration. The id is
// permanently retired; a later issuance to the same account starts a fresh
// lifecycle under a brand-new id. Revocation works while paused.
func (s *Service) Revoke(ctx context.Context, caller, account types.Account) error {
	caller = types.Normalize(caller)
	account = types.Normalize(account)
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}

	s.mu.Lock()
	entry, err := s.store.GetEntry(ctx, account)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !entry.HoldsCredential() {
		s.mu.Unlock()
		return ErrNoCredentialOwned
	}

	retired := entry.CredentialID
	entry.CredentialID = credential.None
	entry.Expiration = 0
	entry.Touch()

	if err := s.store.PutEntry(ctx, entry); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.plugins.EmitCredentialRevoked(ctx, account.String(), retired)
	s.logger.Info("credential revoked",
		"account", account.String(),
		"credential_id", retired,
	)
	return nil
}

// Grant extends the account's subscription by extensionSeconds with no
// payment step, issuing a credential first if none is held. Grants apply
// the same extension law as purchases and ignore the pause flag.
func (s *Service) Grant(ctx context.Context, caller, account types.Account, extensionSeconds int64) (*receipt.Receipt, error) {
	caller = types.Normalize(caller)
	account = types.Normalize(account)
	if err := s.requireOwner(ctx, caller); err != nil {
		return nil, err
	}
	if extensionSeconds < 0 {
		return nil, ErrInvalidDuration
	}

	s.mu.Lock()
	entry, err := s.store.GetEntry(ctx, account)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

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
	newExpiration, err := nextExpiration(entry.Expiration, now, extensionSeconds)
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
	s.mu.Unlock()

	rcpt := &receipt.Receipt{
		Entity:          types.NewEntity(),
		ID:              id.NewReceiptID(),
		Kind:            receipt.KindGrant,
		Account:         account,
		CredentialID:    entry.CredentialID,
		PlanIndex:       GrantPlanIndex,
		Periods:         1,
		ExtensionSecs:   extensionSeconds,
		DurationSeconds: extensionSeconds,
		NewExpiration:   newExpiration,
	}
	if err := s.store.AppendReceipt(ctx, rcpt); err != nil {
		s.logger.Error("receipt append failed", "receipt_id", rcpt.ID.String(), "error", err)
	}

	if issued {
		s.plugins.EmitCredentialIssued(ctx, account.String(), entry.CredentialID)
	}
	s.plugins.EmitSubscriptionExtended(ctx, rcpt)

	s.logger.Info("subscription granted",
		"account", account.String(),
		"credential_id", entry.CredentialID,
		"extension_seconds", extensionSeconds,
		"new_expiration", newExpiration,
	)
	return rcpt, nil
}
