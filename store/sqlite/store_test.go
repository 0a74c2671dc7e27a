package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "voyr.db"))
	require.NoError(t, err)

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testPlan(price types.Units, duration int64) plan.Plan {
	return plan.Plan{Entity: types.NewEntity(), Price: price, DurationSeconds: duration}
}

func TestPlanCatalog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetPlan(ctx, 0)
	assert.ErrorIs(t, err, voyr.ErrIndexOutOfRange)

	for _, price := range []types.Units{100, 200, 300} {
		require.NoError(t, s.AppendPlan(ctx, testPlan(price, 2_592_000)))
	}

	count, err := s.PlanCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	p, err := s.GetPlan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.Units(200), p.Price)
	assert.Equal(t, int64(2_592_000), p.DurationSeconds)

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, types.Units(100), plans[0].Price)
	assert.Equal(t, types.Units(300), plans[2].Price)

	require.NoError(t, s.SetPlan(ctx, 1, testPlan(250, 5_184_000)))
	p, err = s.GetPlan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.Units(250), p.Price)

	assert.ErrorIs(t, s.SetPlan(ctx, 9, testPlan(1, 1)), voyr.ErrIndexOutOfRange)
}

func TestRemovePlanSwapsWithLast(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, price := range []types.Units{100, 200, 300} {
		require.NoError(t, s.AppendPlan(ctx, testPlan(price, 2_592_000)))
	}

	require.NoError(t, s.RemovePlan(ctx, 0))

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	// The former last plan took index 0.
	assert.Equal(t, types.Units(300), plans[0].Price)
	assert.Equal(t, types.Units(200), plans[1].Price)

	// Removing the last index needs no swap.
	require.NoError(t, s.RemovePlan(ctx, 1))
	plans, err = s.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, types.Units(300), plans[0].Price)

	assert.ErrorIs(t, s.RemovePlan(ctx, 5), voyr.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.RemovePlan(ctx, -1), voyr.ErrIndexOutOfRange)
}

func TestLedgerEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := types.Account("alice")

	// Never-seen accounts read as empty entries.
	e, err := s.GetEntry(ctx, alice)
	require.NoError(t, err)
	assert.False(t, e.HoldsCredential())
	assert.Equal(t, alice, e.Account)

	e = credential.Entry{
		Entity:       types.NewEntity(),
		Account:      alice,
		CredentialID: 1,
		Expiration:   1_700_000_000,
	}
	require.NoError(t, s.PutEntry(ctx, e))

	got, err := s.GetEntry(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.CredentialID)
	assert.Equal(t, int64(1_700_000_000), got.Expiration)

	found, err := s.FindByCredential(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, alice, found.Account)

	_, err = s.FindByCredential(ctx, 9)
	assert.ErrorIs(t, err, voyr.ErrUnknownCredential)

	// Upsert: clearing the credential makes the id unresolvable.
	e.CredentialID = credential.None
	e.Expiration = 0
	require.NoError(t, s.PutEntry(ctx, e))

	_, err = s.FindByCredential(ctx, 1)
	assert.ErrorIs(t, err, voyr.ErrUnknownCredential)
	got, err = s.GetEntry(ctx, alice)
	require.NoError(t, err)
	assert.False(t, got.HoldsCredential())
}

func TestCredentialCounterAndPause(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Migration seeds the counter at 1 and the pause flag off.
	n, err := s.CredentialCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	require.NoError(t, s.SetCredentialCounter(ctx, 7))
	n, err = s.CredentialCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	paused, err := s.Paused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, s.SetPaused(ctx, true))
	paused, err = s.Paused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)
}

func TestReceipts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := types.Account("alice")
	base := time.Unix(1_700_000_000, 0).UTC()

	kinds := []receipt.Kind{receipt.KindPurchase, receipt.KindRenewal, receipt.KindGrant}
	for i, kind := range kinds {
		at := base.Add(time.Duration(i) * time.Hour)
		r := &receipt.Receipt{
			Entity:        types.Entity{CreatedAt: at, UpdatedAt: at},
			ID:            id.NewReceiptID(),
			Kind:          kind,
			Account:       alice,
			CredentialID:  1,
			PlanIndex:     0,
			PlanPrice:     100,
			Periods:       1,
			Cost:          100,
			ExtensionSecs: 2_592_000,
			NewExpiration: base.Unix() + 2_592_000,
		}
		require.NoError(t, s.AppendReceipt(ctx, r))
	}
	other := &receipt.Receipt{
		Entity:  types.Entity{CreatedAt: base, UpdatedAt: base},
		ID:      id.NewReceiptID(),
		Kind:    receipt.KindPurchase,
		Account: "bob",
	}
	require.NoError(t, s.AppendReceipt(ctx, other))

	all, err := s.ListReceipts(ctx, alice, receipt.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, receipt.KindPurchase, all[0].Kind)
	assert.Equal(t, receipt.KindGrant, all[2].Kind)
	assert.Equal(t, types.Units(100), all[0].Cost)
	assert.False(t, all[0].ID.IsNil())

	byKind, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Kind: receipt.KindRenewal})
	require.NoError(t, err)
	require.Len(t, byKind, 1)

	since, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Since: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Len(t, since, 2)

	paged, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, receipt.KindRenewal, paged[0].Kind)

	offsetOnly, err := s.ListReceipts(ctx, alice, receipt.ListOpts{Offset: 2})
	require.NoError(t, err)
	require.Len(t, offsetOnly, 1)
	assert.Equal(t, receipt.KindGrant, offsetOnly[0].Kind)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AppendPlan(ctx, testPlan(100, 2_592_000)))

	// Re-running migrations must not disturb existing data.
	require.NoError(t, s.Migrate(ctx))

	count, err := s.PlanCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
