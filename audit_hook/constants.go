package audithook

// Action constants for audit events.
const (
	// Credential actions
	ActionCredentialIssued  = "credential.issued"
	ActionCredentialRevoked = "credential.revoked"

	// Subscription actions
	ActionSubscriptionExtended = "subscription.extended"
	ActionPurchaseRolledBack   = "purchase.rolled_back"

	// Catalog actions
	ActionPlanAdded    = "plan.added"
	ActionPlanModified = "plan.modified"
	ActionPlanRemoved  = "plan.removed"

	// Administrative actions
	ActionPaused              = "sales.paused"
	ActionResumed             = "sales.resumed"
	ActionPaymentMediumChange = "payment_medium.changed"
)

// Resource constants for audit events.
const (
	ResourceCredential    = "credential"
	ResourceSubscription  = "subscription"
	ResourcePlan          = "plan"
	ResourceCatalog       = "catalog"
	ResourcePaymentMedium = "payment_medium"
)

// Category constants for audit events.
const (
	CategorySubscription = "subscription"
	CategoryCatalog      = "catalog"
	CategoryPayment      = "payment"
	CategoryAdmin        = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
