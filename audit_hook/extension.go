// Package audithook bridges VOYR Sub lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import any
// particular audit system directly. Callers inject a RecorderFunc adapter
// that bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/voyr/voyr-sub/plugin"
	"github.com/voyr/voyr-sub/receipt"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnCredentialIssued     = (*Extension)(nil)
	_ plugin.OnCredentialRevoked    = (*Extension)(nil)
	_ plugin.OnSubscriptionExtended = (*Extension)(nil)
	_ plugin.OnPurchaseRolledBack   = (*Extension)(nil)
	_ plugin.OnPlanAdded            = (*Extension)(nil)
	_ plugin.OnPlanModified         = (*Extension)(nil)
	_ plugin.OnPlanRemoved          = (*Extension)(nil)
	_ plugin.OnPaused               = (*Extension)(nil)
	_ plugin.OnResumed              = (*Extension)(nil)
	_ plugin.OnPaymentMediumChanged = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges VOYR Sub lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Credential lifecycle hooks
// ──────────────────────────────────────────────────

// OnCredentialIssued implements plugin.OnCredentialIssued.
func (e *Extension) OnCredentialIssued(ctx context.Context, account string, credentialID uint64) error {
	return e.record(ctx, ActionCredentialIssued, SeverityInfo, OutcomeSuccess,
		ResourceCredential, strconv.FormatUint(credentialID, 10), CategorySubscription, nil,
		"account", account,
		"credential_id", credentialID,
	)
}

// OnCredentialRevoked implements plugin.OnCredentialRevoked.
func (e *Extension) OnCredentialRevoked(ctx context.Context, account string, credentialID uint64) error {
	return e.record(ctx, ActionCredentialRevoked, SeverityWarning, OutcomeSuccess,
		ResourceCredential, strconv.FormatUint(credentialID, 10), CategorySubscription, nil,
		"account", account,
		"credential_id", credentialID,
	)
}

// OnSubscriptionExtended implements plugin.OnSubscriptionExtended.
func (e *Extension) OnSubscriptionExtended(ctx context.Context, rcpt interface{}) error {
	r, ok := rcpt.(*receipt.Receipt)
	if !ok {
		return e.record(ctx, ActionSubscriptionExtended, SeverityInfo, OutcomeSuccess,
			ResourceSubscription, "", CategorySubscription, nil,
			"event", "subscription_extended",
		)
	}

	return e.record(ctx, ActionSubscriptionExtended, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, r.ID.String(), CategorySubscription, nil,
		"account", r.Account.String(),
		"kind", string(r.Kind),
		"credential_id", r.CredentialID,
		"cost", r.Cost.Int64(),
		"new_expiration", r.NewExpiration,
	)
}

// OnPurchaseRolledBack implements plugin.OnPurchaseRolledBack.
func (e *Extension) OnPurchaseRolledBack(ctx context.Context, account string, planIndex int, cause error) error {
	return e.record(ctx, ActionPurchaseRolledBack, SeverityError, OutcomeFailure,
		ResourceSubscription, "", CategoryPayment, cause,
		"account", account,
		"plan_index", planIndex,
	)
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnPlanAdded implements plugin.OnPlanAdded.
func (e *Extension) OnPlanAdded(ctx context.Context, index int, _ interface{}) error {
	return e.record(ctx, ActionPlanAdded, SeverityInfo, OutcomeSuccess,
		ResourcePlan, strconv.Itoa(index), CategoryCatalog, nil,
		"plan_index", index,
	)
}

// OnPlanModified implements plugin.OnPlanModified.
func (e *Extension) OnPlanModified(ctx context.Context, index int, _, _ interface{}) error {
	return e.record(ctx, ActionPlanModified, SeverityInfo, OutcomeSuccess,
		ResourcePlan, strconv.Itoa(index), CategoryCatalog, nil,
		"plan_index", index,
	)
}

// OnPlanRemoved implements plugin.OnPlanRemoved.
func (e *Extension) OnPlanRemoved(ctx context.Context, index int) error {
	return e.record(ctx, ActionPlanRemoved, SeverityInfo, OutcomeSuccess,
		ResourcePlan, strconv.Itoa(index), CategoryCatalog, nil,
		"plan_index", index,
	)
}

// ──────────────────────────────────────────────────
// Administrative hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (e *Extension) OnPaused(ctx context.Context) error {
	return e.record(ctx, ActionPaused, SeverityWarning, OutcomeSuccess,
		ResourceCatalog, "", CategoryAdmin, nil,
	)
}

// OnResumed implements plugin.OnResumed.
func (e *Extension) OnResumed(ctx context.Context) error {
	return e.record(ctx, ActionResumed, SeverityInfo, OutcomeSuccess,
		ResourceCatalog, "", CategoryAdmin, nil,
	)
}

// OnPaymentMediumChanged implements plugin.OnPaymentMediumChanged.
func (e *Extension) OnPaymentMediumChanged(ctx context.Context) error {
	return e.record(ctx, ActionPaymentMediumChange, SeverityWarning, OutcomeSuccess,
		ResourcePaymentMedium, "", CategoryAdmin, nil,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
