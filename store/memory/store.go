// Package memory provides an in-memory Store implementation, suitable for
// tests and single-process embedding.
package memory

import (
	"context"
	"sync"

	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/store"
	"github.com/voyr/voyr-sub/types"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Plan catalog, dense index-addressed
	plans []plan.Plan

	// Ledger
	entries      map[types.Account]credential.Entry
	byCredential map[uint64]types.Account
	counter      uint64 // next credential id

	paused   bool
	receipts []*receipt.Receipt
	closed   bool
}

func New() *Store {
	return &Store{
		entries:      make(map[types.Account]credential.Entry),
		byCredential: make(map[uint64]types.Account),
		counter:      1,
	}
}

// Plan catalog

func (s *Store) ListPlans(_ context.Context) ([]plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]plan.Plan, len(s.plans))
	copy(out, s.plans)
	return out, nil
}

func (s *Store) GetPlan(_ context.Context, index int) (plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.plans) {
		return plan.Plan{}, voyr.ErrIndexOutOfRange
	}
	return s.plans[index], nil
}

func (s *Store) AppendPlan(_ context.Context, p plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = append(s.plans, p)
	return nil
}

func (s *Store) SetPlan(_ context.Context, index int, p plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.plans) {
		return voyr.ErrIndexOutOfRange
	}
	s.plans[index] = p
	return nil
}

func (s *Store) RemovePlan(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.plans) {
		return voyr.ErrIndexOutOfRange
	}

	// Swap-with-last-then-shrink: the former last plan takes the freed slot.
	last := len(s.plans) - 1
	s.plans[index] = s.plans[last]
	s.plans = s.plans[:last]
	return nil
}

func (s *Store) PlanCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans), nil
}

// Ledger

func (s *Store) GetEntry(_ context.Context, account types.Account) (credential.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[account]; ok {
		return e, nil
	}
	// Never-seen accounts read as empty entries, not as errors.
	return credential.Entry{Account: account}, nil
}

func (s *Store) PutEntry(_ context.Context, e credential.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[e.Account]; ok && prev.CredentialID != credential.None {
		if prev.CredentialID != e.CredentialID {
			delete(s.byCredential, prev.CredentialID)
		}
	}
	if e.CredentialID != credential.None {
		s.byCredential[e.CredentialID] = e.Account
	}
	s.entries[e.Account] = e
	return nil
}

func (s *Store) FindByCredential(_ context.Context, credID uint64) (credential.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byCredential[credID]
	if !ok {
		return credential.Entry{}, voyr.ErrUnknownCredential
	}
	return s.entries[account], nil
}

func (s *Store) CredentialCounter(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter, nil
}

func (s *Store) SetCredentialCounter(_ context.Context, next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = next
	return nil
}

// Pause flag

func (s *Store) Paused(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused, nil
}

func (s *Store) SetPaused(_ context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	return nil
}

// Receipts

func (s *Store) AppendReceipt(_ context.Context, r *receipt.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.receipts = append(s.receipts, &cp)
	return nil
}

func (s *Store) ListReceipts(_ context.Context, account types.Account, opts receipt.ListOpts) ([]*receipt.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*receipt.Receipt, 0)
	for _, r := range s.receipts {
		if r.Account != account {
			continue
		}
		if opts.Kind != "" && r.Kind != opts.Kind {
			continue
		}
		if !opts.Since.IsZero() && r.CreatedAt.Before(opts.Since) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Core

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return voyr.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
