// Package observability provides a metrics extension for VOYR Sub that
// records lifecycle event counts via an injected MetricFactory.
package observability

import (
	"context"

	"github.com/voyr/voyr-sub/plugin"
	"github.com/voyr/voyr-sub/receipt"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnCredentialIssued     = (*MetricsExtension)(nil)
	_ plugin.OnCredentialRevoked    = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionExtended = (*MetricsExtension)(nil)
	_ plugin.OnPurchaseRolledBack   = (*MetricsExtension)(nil)
	_ plugin.OnPlanAdded            = (*MetricsExtension)(nil)
	_ plugin.OnPlanModified         = (*MetricsExtension)(nil)
	_ plugin.OnPlanRemoved          = (*MetricsExtension)(nil)
	_ plugin.OnPaused               = (*MetricsExtension)(nil)
	_ plugin.OnResumed              = (*MetricsExtension)(nil)
	_ plugin.OnPaymentMediumChanged = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a VOYR Sub plugin to automatically track subscription
// activity.
type MetricsExtension struct {
	factory MetricFactory

	// Credential metrics
	CredentialsIssued  Counter
	CredentialsRevoked Counter

	// Subscription metrics
	Purchases         Counter
	Renewals          Counter
	Grants            Counter
	PurchaseRollbacks Counter
	ExtensionCost     Histogram
	ExtensionSeconds  Histogram

	// Catalog metrics
	PlansAdded    Counter
	PlansModified Counter
	PlansRemoved  Counter

	// Administrative metrics
	SalesPaused          Counter
	SalesResumed         Counter
	PaymentMediumChanges Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Credential metrics
		CredentialsIssued:  factory.Counter("voyr.credential.issued"),
		CredentialsRevoked: factory.Counter("voyr.credential.revoked"),

		// Subscription metrics
		Purchases:         factory.Counter("voyr.subscription.purchases"),
		Renewals:          factory.Counter("voyr.subscription.renewals"),
		Grants:            factory.Counter("voyr.subscription.grants"),
		PurchaseRollbacks: factory.Counter("voyr.subscription.rollbacks"),
		ExtensionCost:     factory.Histogram("voyr.subscription.cost"),
		ExtensionSeconds:  factory.Histogram("voyr.subscription.extension_seconds"),

		// Catalog metrics
		PlansAdded:    factory.Counter("voyr.plan.added"),
		PlansModified: factory.Counter("voyr.plan.modified"),
		PlansRemoved:  factory.Counter("voyr.plan.removed"),

		// Administrative metrics
		SalesPaused:          factory.Counter("voyr.sales.paused"),
		SalesResumed:         factory.Counter("voyr.sales.resumed"),
		PaymentMediumChanges: factory.Counter("voyr.payment_medium.changes"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Credential lifecycle hooks
// ──────────────────────────────────────────────────

// OnCredentialIssued implements plugin.OnCredentialIssued.
func (m *MetricsExtension) OnCredentialIssued(_ context.Context, _ string, _ uint64) error {
	m.CredentialsIssued.Inc()
	return nil
}

// OnCredentialRevoked implements plugin.OnCredentialRevoked.
func (m *MetricsExtension) OnCredentialRevoked(_ context.Context, _ string, _ uint64) error {
	m.CredentialsRevoked.Inc()
	return nil
}

// OnSubscriptionExtended implements plugin.OnSubscriptionExtended.
func (m *MetricsExtension) OnSubscriptionExtended(_ context.Context, rcpt interface{}) error {
	r, ok := rcpt.(*receipt.Receipt)
	if !ok {
		return nil
	}

	switch r.Kind {
	case receipt.KindPurchase:
		m.Purchases.Inc()
	case receipt.KindRenewal:
		m.Renewals.Inc()
	case receipt.KindGrant:
		m.Grants.Inc()
	}

	m.ExtensionCost.Observe(float64(r.Cost.Int64()))
	m.ExtensionSeconds.Observe(float64(r.ExtensionSecs))
	return nil
}

// OnPurchaseRolledBack implements plugin.OnPurchaseRolledBack.
func (m *MetricsExtension) OnPurchaseRolledBack(_ context.Context, _ string, _ int, _ error) error {
	m.PurchaseRollbacks.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Catalog hooks
// ──────────────────────────────────────────────────

// OnPlanAdded implements plugin.OnPlanAdded.
func (m *MetricsExtension) OnPlanAdded(_ context.Context, _ int, _ interface{}) error {
	m.PlansAdded.Inc()
	return nil
}

// OnPlanModified implements plugin.OnPlanModified.
func (m *MetricsExtension) OnPlanModified(_ context.Context, _ int, _, _ interface{}) error {
	m.PlansModified.Inc()
	return nil
}

// OnPlanRemoved implements plugin.OnPlanRemoved.
func (m *MetricsExtension) OnPlanRemoved(_ context.Context, _ int) error {
	m.PlansRemoved.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Administrative hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (m *MetricsExtension) OnPaused(_ context.Context) error {
	m.SalesPaused.Inc()
	return nil
}

// OnResumed implements plugin.OnResumed.
func (m *MetricsExtension) OnResumed(_ context.Context) error {
	m.SalesResumed.Inc()
	return nil
}

// OnPaymentMediumChanged implements plugin.OnPaymentMediumChanged.
func (m *MetricsExtension) OnPaymentMediumChanged(_ context.Context) error {
	m.PaymentMediumChanges.Inc()
	return nil
}
