package plugin

import (
	"context"
	"errors"
	"testing"
)

// recorderPlugin implements a subset of hooks and records every call.
type recorderPlugin struct {
	name string

	issued   []uint64
	revoked  []uint64
	extended int
	paused   int
	resumed  int

	failIssued bool
}

func (p *recorderPlugin) Name() string { return p.name }

func (p *recorderPlugin) OnCredentialIssued(_ context.Context, _ string, credentialID uint64) error {
	if p.failIssued {
		return errors.New("boom")
	}
	p.issued = append(p.issued, credentialID)
	return nil
}

func (p *recorderPlugin) OnCredentialRevoked(_ context.Context, _ string, credentialID uint64) error {
	p.revoked = append(p.revoked, credentialID)
	return nil
}

func (p *recorderPlugin) OnSubscriptionExtended(_ context.Context, _ interface{}) error {
	p.extended++
	return nil
}

func (p *recorderPlugin) OnPaused(_ context.Context) error {
	p.paused++
	return nil
}

func (p *recorderPlugin) OnResumed(_ context.Context) error {
	p.resumed++
	return nil
}

// namedOnly implements no hooks beyond the base interface.
type namedOnly struct{ name string }

func (p namedOnly) Name() string { return p.name }

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	p := &recorderPlugin{name: "recorder"}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&recorderPlugin{name: "recorder"}); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := r.Register(namedOnly{name: "bare"}); err != nil {
		t.Fatalf("Register bare: %v", err)
	}

	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}
	if got := r.Get("recorder"); got != p {
		t.Error("Get should return the registered plugin")
	}
	if got := r.Get("missing"); got != nil {
		t.Error("Get of an unknown name should return nil")
	}
	if got := len(r.List()); got != 2 {
		t.Errorf("List = %d entries, want 2", got)
	}
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	p := &recorderPlugin{name: "recorder"}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// A hook-less plugin must not break dispatch.
	if err := r.Register(namedOnly{name: "bare"}); err != nil {
		t.Fatalf("Register bare: %v", err)
	}

	r.EmitCredentialIssued(ctx, "alice", 1)
	r.EmitCredentialIssued(ctx, "bob", 2)
	r.EmitCredentialRevoked(ctx, "alice", 1)
	r.EmitSubscriptionExtended(ctx, nil)
	r.EmitPaused(ctx)
	r.EmitResumed(ctx)
	// Hooks the plugin does not implement are silently skipped.
	r.EmitPlanAdded(ctx, 0, nil)
	r.EmitPlanRemoved(ctx, 0)
	r.EmitPaymentMediumChanged(ctx)

	if len(p.issued) != 2 || p.issued[0] != 1 || p.issued[1] != 2 {
		t.Errorf("issued = %v, want [1 2]", p.issued)
	}
	if len(p.revoked) != 1 || p.revoked[0] != 1 {
		t.Errorf("revoked = %v, want [1]", p.revoked)
	}
	if p.extended != 1 {
		t.Errorf("extended = %d, want 1", p.extended)
	}
	if p.paused != 1 || p.resumed != 1 {
		t.Errorf("paused/resumed = %d/%d, want 1/1", p.paused, p.resumed)
	}
}

func TestRegistryHookFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	failing := &recorderPlugin{name: "failing", failIssued: true}
	healthy := &recorderPlugin{name: "healthy"}
	if err := r.Register(failing); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(healthy); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// A failing hook is logged, not propagated; later plugins still run.
	r.EmitCredentialIssued(ctx, "alice", 1)

	if len(healthy.issued) != 1 {
		t.Errorf("healthy plugin issued = %v, want [1]", healthy.issued)
	}
}
