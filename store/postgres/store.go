// Package postgres provides a Store implementation backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	vstore "github.com/voyr/voyr-sub/store"
	"github.com/voyr/voyr-sub/types"
)

// compile-time interface check
var _ vstore.Store = (*Store)(nil)

// Store implements store.Store on PostgreSQL.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// New creates a PostgreSQL store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open opens a PostgreSQL connection with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", voyr.ErrMigrationFailed, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Plan catalog ====================

func (s *Store) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	query, args, err := s.sb.
		Select("price", "duration_seconds", "created_at", "updated_at").
		From("voyr_plans").
		OrderBy("idx").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]plan.Plan, 0)
	for rows.Next() {
		var p plan.Plan
		if err := rows.Scan(&p.Price, &p.DurationSeconds, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) GetPlan(ctx context.Context, index int) (plan.Plan, error) {
	query, args, err := s.sb.
		Select("price", "duration_seconds", "created_at", "updated_at").
		From("voyr_plans").
		Where(sq.Eq{"idx": index}).
		ToSql()
	if err != nil {
		return plan.Plan{}, err
	}

	var p plan.Plan
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&p.Price, &p.DurationSeconds, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.Plan{}, voyr.ErrIndexOutOfRange
	}
	if err != nil {
		return plan.Plan{}, fmt.Errorf("get plan %d: %w", index, err)
	}
	return p, nil
}

func (s *Store) AppendPlan(ctx context.Context, p plan.Plan) error {
	// The catalog index is dense, so the next index is the current count.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_plans (idx, price, duration_seconds, created_at, updated_at)
		 SELECT COUNT(*), $1, $2, $3, $4 FROM voyr_plans`,
		p.Price, p.DurationSeconds, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("append plan: %w", err)
	}
	return nil
}

func (s *Store) SetPlan(ctx context.Context, index int, p plan.Plan) error {
	query, args, err := s.sb.
		Update("voyr_plans").
		Set("price", p.Price).
		Set("duration_seconds", p.DurationSeconds).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"idx": index}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set plan %d: %w", index, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return voyr.ErrIndexOutOfRange
	}
	return nil
}

// RemovePlan reproduces swap-with-last-then-shrink: the former last plan
// takes the freed index and the catalog shrinks by one.
func (s *Store) RemovePlan(ctx context.Context, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove plan: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM voyr_plans`).Scan(&count); err != nil {
		return fmt.Errorf("remove plan: count: %w", err)
	}
	if index < 0 || index >= count {
		return voyr.ErrIndexOutOfRange
	}

	last := count - 1
	if index != last {
		_, err = tx.ExecContext(ctx,
			`UPDATE voyr_plans dst SET
			    price            = src.price,
			    duration_seconds = src.duration_seconds,
			    created_at       = src.created_at,
			    updated_at       = src.updated_at
			 FROM voyr_plans src
			 WHERE dst.idx = $1 AND src.idx = $2`,
			index, last,
		)
		if err != nil {
			return fmt.Errorf("remove plan: swap: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM voyr_plans WHERE idx = $1`, last); err != nil {
		return fmt.Errorf("remove plan: shrink: %w", err)
	}

	return tx.Commit()
}

func (s *Store) PlanCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voyr_plans`).Scan(&count); err != nil {
		return 0, fmt.Errorf("plan count: %w", err)
	}
	return count, nil
}

// ==================== Ledger ====================

func (s *Store) GetEntry(ctx context.Context, account types.Account) (credential.Entry, error) {
	query, args, err := s.sb.
		Select("account", "credential_id", "expiration", "created_at", "updated_at").
		From("voyr_entries").
		Where(sq.Eq{"account": account.String()}).
		ToSql()
	if err != nil {
		return credential.Entry{}, err
	}

	var e credential.Entry
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&e.Account, &e.CredentialID, &e.Expiration, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return credential.Entry{Account: account}, nil
	}
	if err != nil {
		return credential.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

func (s *Store) PutEntry(ctx context.Context, e credential.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_entries (account, credential_id, expiration, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (account) DO UPDATE SET
		    credential_id = EXCLUDED.credential_id,
		    expiration    = EXCLUDED.expiration,
		    updated_at    = EXCLUDED.updated_at`,
		e.Account.String(), e.CredentialID, e.Expiration, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *Store) FindByCredential(ctx context.Context, credID uint64) (credential.Entry, error) {
	query, args, err := s.sb.
		Select("account", "credential_id", "expiration", "created_at", "updated_at").
		From("voyr_entries").
		Where(sq.Eq{"credential_id": credID}).
		Where(sq.NotEq{"credential_id": 0}).
		ToSql()
	if err != nil {
		return credential.Entry{}, err
	}

	var e credential.Entry
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&e.Account, &e.CredentialID, &e.Expiration, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return credential.Entry{}, voyr.ErrUnknownCredential
	}
	if err != nil {
		return credential.Entry{}, fmt.Errorf("find by credential: %w", err)
	}
	return e, nil
}

func (s *Store) CredentialCounter(ctx context.Context) (uint64, error) {
	v, err := s.getMeta(ctx, "credential_counter")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("credential counter: %w", err)
	}
	return n, nil
}

func (s *Store) SetCredentialCounter(ctx context.Context, next uint64) error {
	return s.setMeta(ctx, "credential_counter", strconv.FormatUint(next, 10))
}

// ==================== Pause flag ====================

func (s *Store) Paused(ctx context.Context) (bool, error) {
	v, err := s.getMeta(ctx, "paused")
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *Store) SetPaused(ctx context.Context, paused bool) error {
	v := "0"
	if paused {
		v = "1"
	}
	return s.setMeta(ctx, "paused", v)
}

func (s *Store) getMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM voyr_meta WHERE key = $1`, key).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("meta %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_meta (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("meta %q: %w", key, err)
	}
	return nil
}

// ==================== Receipts ====================

func (s *Store) AppendReceipt(ctx context.Context, r *receipt.Receipt) error {
	query, args, err := s.sb.
		Insert("voyr_receipts").
		Columns("id", "kind", "account", "credential_id", "plan_index", "plan_price",
			"duration_seconds", "periods", "cost", "extension_secs", "new_expiration",
			"created_at", "updated_at").
		Values(r.ID.String(), string(r.Kind), r.Account.String(), r.CredentialID,
			r.PlanIndex, r.PlanPrice, r.DurationSeconds, r.Periods, r.Cost,
			r.ExtensionSecs, r.NewExpiration, r.CreatedAt, r.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append receipt: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, account types.Account, opts receipt.ListOpts) ([]*receipt.Receipt, error) {
	q := s.sb.
		Select("id", "kind", "account", "credential_id", "plan_index", "plan_price",
			"duration_seconds", "periods", "cost", "extension_secs", "new_expiration",
			"created_at", "updated_at").
		From("voyr_receipts").
		Where(sq.Eq{"account": account.String()}).
		OrderBy("created_at", "id")

	if opts.Kind != "" {
		q = q.Where(sq.Eq{"kind": string(opts.Kind)})
	}
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": opts.Since})
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	result := make([]*receipt.Receipt, 0)
	for rows.Next() {
		var r receipt.Receipt
		var rid, kind string
		if err := rows.Scan(
			&rid, &kind, &r.Account, &r.CredentialID, &r.PlanIndex, &r.PlanPrice,
			&r.DurationSeconds, &r.Periods, &r.Cost, &r.ExtensionSecs, &r.NewExpiration,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}

		parsed, err := id.ParseReceiptID(rid)
		if err != nil {
			return nil, err
		}
		r.ID = parsed
		r.Kind = receipt.Kind(kind)
		result = append(result, &r)
	}
	return result, rows.Err()
}
