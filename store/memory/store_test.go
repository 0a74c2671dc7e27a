package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/types"
)

func newPlan(price types.Units, duration int64) plan.Plan {
	return plan.Plan{Entity: types.NewEntity(), Price: price, DurationSeconds: duration}
}

func TestPlanCatalog(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetPlan(ctx, 0); !errors.Is(err, voyr.ErrIndexOutOfRange) {
		t.Errorf("GetPlan on empty catalog err = %v, want ErrIndexOutOfRange", err)
	}

	for _, price := range []types.Units{100, 200, 300} {
		if err := s.AppendPlan(ctx, newPlan(price, 2_592_000)); err != nil {
			t.Fatalf("AppendPlan: %v", err)
		}
	}

	count, err := s.PlanCount(ctx)
	if err != nil {
		t.Fatalf("PlanCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("PlanCount = %d, want 3", count)
	}

	p, err := s.GetPlan(ctx, 1)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if p.Price != 200 {
		t.Errorf("plans[1].Price = %d, want 200", p.Price)
	}

	if err := s.SetPlan(ctx, 1, newPlan(250, 2_592_000)); err != nil {
		t.Fatalf("SetPlan: %v", err)
	}
	p, _ = s.GetPlan(ctx, 1)
	if p.Price != 250 {
		t.Errorf("plans[1].Price after SetPlan = %d, want 250", p.Price)
	}
	if err := s.SetPlan(ctx, 5, newPlan(1, 1)); !errors.Is(err, voyr.ErrIndexOutOfRange) {
		t.Errorf("out-of-range SetPlan err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestRemovePlanSwapsWithLast(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, price := range []types.Units{100, 200, 300} {
		if err := s.AppendPlan(ctx, newPlan(price, 2_592_000)); err != nil {
			t.Fatalf("AppendPlan: %v", err)
		}
	}

	if err := s.RemovePlan(ctx, 0); err != nil {
		t.Fatalf("RemovePlan: %v", err)
	}

	plans, err := s.ListPlans(ctx)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if plans[0].Price != 300 || plans[1].Price != 200 {
		t.Errorf("plan prices = %d,%d, want 300,200", plans[0].Price, plans[1].Price)
	}

	// Removing the last index needs no swap.
	if err := s.RemovePlan(ctx, 1); err != nil {
		t.Fatalf("RemovePlan last: %v", err)
	}
	plans, _ = s.ListPlans(ctx)
	if len(plans) != 1 || plans[0].Price != 300 {
		t.Errorf("plans = %+v, want single plan with price 300", plans)
	}

	if err := s.RemovePlan(ctx, 3); !errors.Is(err, voyr.ErrIndexOutOfRange) {
		t.Errorf("out-of-range RemovePlan err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestLedgerEntries(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := types.Account("alice")

	// Never-seen accounts read as empty entries.
	e, err := s.GetEntry(ctx, alice)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e.HoldsCredential() || e.Expiration != 0 {
		t.Errorf("fresh entry = %+v, want empty", e)
	}

	e = credential.Entry{
		Entity:       types.NewEntity(),
		Account:      alice,
		CredentialID: 1,
		Expiration:   1_700_000_000,
	}
	if err := s.PutEntry(ctx, e); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}

	got, err := s.FindByCredential(ctx, 1)
	if err != nil {
		t.Fatalf("FindByCredential: %v", err)
	}
	if got.Account != alice {
		t.Errorf("FindByCredential(1).Account = %q, want alice", got.Account)
	}
	if _, err := s.FindByCredential(ctx, 9); !errors.Is(err, voyr.ErrUnknownCredential) {
		t.Errorf("unknown credential err = %v, want ErrUnknownCredential", err)
	}

	// Clearing the credential drops the reverse mapping.
	e.CredentialID = credential.None
	e.Expiration = 0
	if err := s.PutEntry(ctx, e); err != nil {
		t.Fatalf("PutEntry clear: %v", err)
	}
	if _, err := s.FindByCredential(ctx, 1); !errors.Is(err, voyr.ErrUnknownCredential) {
		t.Errorf("retired credential err = %v, want ErrUnknownCredential", err)
	}
}

func TestCredentialCounter(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.CredentialCounter(ctx)
	if err != nil {
		t.Fatalf("CredentialCounter: %v", err)
	}
	if n != 1 {
		t.Errorf("initial counter = %d, want 1", n)
	}

	if err := s.SetCredentialCounter(ctx, 5); err != nil {
		t.Fatalf("SetCredentialCounter: %v", err)
	}
	n, _ = s.CredentialCounter(ctx)
	if n != 5 {
		t.Errorf("counter = %d, want 5", n)
	}
}

func TestPauseFlag(t *testing.T) {
	ctx := context.Background()
	s := New()

	paused, err := s.Paused(ctx)
	if err != nil {
		t.Fatalf("Paused: %v", err)
	}
	if paused {
		t.Error("fresh store should not be paused")
	}

	if err := s.SetPaused(ctx, true); err != nil {
		t.Fatalf("SetPaused: %v", err)
	}
	paused, _ = s.Paused(ctx)
	if !paused {
		t.Error("store should be paused")
	}
}

func TestReceipts(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := types.Account("alice")
	base := time.Unix(1_700_000_000, 0).UTC()

	kinds := []receipt.Kind{receipt.KindPurchase, receipt.KindRenewal, receipt.KindGrant}
	for i, kind := range kinds {
		r := &receipt.Receipt{
			Entity:  types.Entity{CreatedAt: base.Add(time.Duration(i) * time.Hour)},
			ID:      id.NewReceiptID(),
			Kind:    kind,
			Account: alice,
		}
		if err := s.AppendReceipt(ctx, r); err != nil {
			t.Fatalf("AppendReceipt: %v", err)
		}
	}
	other := &receipt.Receipt{
		Entity:  types.Entity{CreatedAt: base},
		ID:      id.NewReceiptID(),
		Kind:    receipt.KindPurchase,
		Account: "bob",
	}
	if err := s.AppendReceipt(ctx, other); err != nil {
		t.Fatalf("AppendReceipt: %v", err)
	}

	all, err := s.ListReceipts(ctx, alice, receipt.ListOpts{})
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("receipts = %d, want 3", len(all))
	}

	byKind, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Kind: receipt.KindGrant})
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(byKind) != 1 || byKind[0].Kind != receipt.KindGrant {
		t.Errorf("grant receipts = %+v, want one grant", byKind)
	}

	since, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Since: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("since receipts = %d, want 2", len(since))
	}

	paged, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if len(paged) != 1 || paged[0].Kind != receipt.KindRenewal {
		t.Errorf("paged receipts = %+v, want the renewal", paged)
	}
}

func TestPing(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, voyr.ErrStoreClosed) {
		t.Errorf("Ping after Close err = %v, want ErrStoreClosed", err)
	}
}
