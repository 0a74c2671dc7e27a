package voyr

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/medium"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/plugin"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/store"
	"github.com/voyr/voyr-sub/types"
)

// CollectionName is the fixed name of the credential collection.
const CollectionName = "VOYR SUB"

// Service is the subscription engine: plan catalog, credential ledger,
// payment processing, and role-gated administration over one shared store.
//
// Mutating operations are serialized by an internal lock and follow
// checks → effects → interactions ordering: all ledger writes commit before
// the external payment call, and a failed external call unwinds the
// operation completely.
type Service struct {
	store     store.Store
	medium    medium.PaymentMedium
	authority medium.AuthorityProvider
	plugins   *plugin.Registry
	logger    *slog.Logger

	creator types.Account
	// spender is the account the payment medium knows this system as;
	// delegated allowances are granted to it.
	spender types.Account
	symbol  string

	now func() time.Time

	// mu serializes mutating operations. It is NOT held across the external
	// transfer call — state is committed first, so a re-entrant medium
	// observes paid, consistent state.
	mu sync.Mutex
}

// New creates a new subscription Service.
//
// creator is the fixed beneficiary of payment proceeds; catalogLabel becomes
// the collection symbol. The payment medium and authority provider are the
// external collaborators the core consumes.
func New(s store.Store, m medium.PaymentMedium, auth medium.AuthorityProvider, creator types.Account, catalogLabel string, opts ...Option) *Service {
	creator = types.Normalize(creator)

	svc := &Service{
		store:     s,
		medium:    m,
		authority: auth,
		plugins:   plugin.NewRegistry(),
		logger:    slog.Default(),
		creator:   creator,
		spender:   creator,
		symbol:    catalogLabel,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// Option configures a Service instance.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
		s.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(s *Service) {
		_ = s.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the time source. Tests inject a fixed clock so the
// expiration-extension law is deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSpender sets the account the payment medium recognizes this system
// as when checking delegated allowances. Defaults to the creator account.
func WithSpender(spender types.Account) Option {
	return func(s *Service) {
		s.spender = types.Normalize(spender)
	}
}

// Start migrates the store and initializes plugins.
func (s *Service) Start(ctx context.Context) error {
	if err := s.store.Migrate(ctx); err != nil {
		return err
	}

	s.plugins.EmitInit(ctx, s)

	s.logger.Info("voyr sub started",
		"creator", s.creator.String(),
		"symbol", s.symbol,
	)

	return nil
}

// Stop shuts down the Service.
func (s *Service) Stop() error {
	s.plugins.EmitShutdown(context.Background())
	return s.store.Close()
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Name returns the fixed collection name.
func (s *Service) Name() string { return CollectionName }

// Symbol returns the catalog label chosen at construction.
func (s *Service) Symbol() string { return s.symbol }

// Creator returns the fixed beneficiary account.
func (s *Service) Creator() types.Account { return s.creator }

// BalanceOf returns 1 if the account currently holds a credential id,
// regardless of expiration, else 0. Holding is not entitlement — see
// IsSubscriptionActive.
func (s *Service) BalanceOf(ctx context.Context, account types.Account) (int, error) {
	entry, err := s.store.GetEntry(ctx, types.Normalize(account))
	if err != nil {
		return 0, err
	}
	if entry.HoldsCredential() {
		return 1, nil
	}
	return 0, nil
}

// OwnerOf resolves a credential id to the holding account. Unassigned and
// retired ids fail with ErrUnknownCredential.
func (s *Service) OwnerOf(ctx context.Context, credentialID uint64) (types.Account, error) {
	if credentialID == credential.None {
		return types.ZeroAccount, ErrUnknownCredential
	}

	entry, err := s.store.FindByCredential(ctx, credentialID)
	if err != nil {
		return types.ZeroAccount, err
	}
	return entry.Account, nil
}

// IsSubscriptionActive reports whether the account is entitled right now:
// credential held and expiration at or past the current time.
func (s *Service) IsSubscriptionActive(ctx context.Context, account types.Account) (bool, error) {
	entry, err := s.store.GetEntry(ctx, types.Normalize(account))
	if err != nil {
		return false, err
	}
	return entry.ActiveAt(s.now().Unix()), nil
}

// ExpirationOf returns the account's expiration timestamp in Unix seconds.
// Accounts that never subscribed (or were fully revoked) fail with
// ErrUnknownAccount.
func (s *Service) ExpirationOf(ctx context.Context, account types.Account) (int64, error) {
	entry, err := s.store.GetEntry(ctx, types.Normalize(account))
	if err != nil {
		return 0, err
	}
	if !entry.HoldsCredential() && entry.Expiration == 0 {
		return 0, ErrUnknownAccount
	}
	return entry.Expiration, nil
}

// StateOf derives the lifecycle state of the account's credential.
func (s *Service) StateOf(ctx context.Context, account types.Account) (credential.State, error) {
	entry, err := s.store.GetEntry(ctx, types.Normalize(account))
	if err != nil {
		return "", err
	}
	return entry.State(s.now().Unix()), nil
}

// Plans returns a copy of the current plan catalog, in index order.
func (s *Service) Plans(ctx context.Context) ([]plan.Plan, error) {
	return s.store.ListPlans(ctx)
}

// Paused reports whether purchases are currently paused.
func (s *Service) Paused(ctx context.Context) (bool, error) {
	return s.store.Paused(ctx)
}

// Receipts returns the account's receipts, oldest first.
func (s *Service) Receipts(ctx context.Context, account types.Account, opts receipt.ListOpts) ([]*receipt.Receipt, error) {
	return s.store.ListReceipts(ctx, types.Normalize(account), opts)
}
