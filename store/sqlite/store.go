package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

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

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(_ context.Context) error {
	if err := runMigrations(s.db); err != nil {
		return fmt.Errorf("%w: %v", voyr.ErrMigrationFailed, err)
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT price, duration_seconds, created_at, updated_at FROM voyr_plans ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]plan.Plan, 0)
	for rows.Next() {
		var p plan.Plan
		var created, updated int64
		if err := rows.Scan(&p.Price, &p.DurationSeconds, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		p.CreatedAt = time.Unix(created, 0).UTC()
		p.UpdatedAt = time.Unix(updated, 0).UTC()
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Store) GetPlan(ctx context.Context, index int) (plan.Plan, error) {
	var p plan.Plan
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT price, duration_seconds, created_at, updated_at FROM voyr_plans WHERE idx = ?`,
		index,
	).Scan(&p.Price, &p.DurationSeconds, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.Plan{}, voyr.ErrIndexOutOfRange
	}
	if err != nil {
		return plan.Plan{}, fmt.Errorf("get plan %d: %w", index, err)
	}
	p.CreatedAt = time.Unix(created, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return p, nil
}

func (s *Store) AppendPlan(ctx context.Context, p plan.Plan) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_plans (idx, price, duration_seconds, created_at, updated_at)
		 SELECT COUNT(*), ?, ?, ?, ? FROM voyr_plans`,
		p.Price, p.DurationSeconds, p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append plan: %w", err)
	}
	return nil
}

func (s *Store) SetPlan(ctx context.Context, index int, p plan.Plan) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE voyr_plans SET price = ?, duration_seconds = ?, updated_at = ? WHERE idx = ?`,
		p.Price, p.DurationSeconds, p.UpdatedAt.Unix(), index,
	)
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
			`UPDATE voyr_plans SET
			    price            = (SELECT price FROM voyr_plans WHERE idx = ?),
			    duration_seconds = (SELECT duration_seconds FROM voyr_plans WHERE idx = ?),
			    created_at       = (SELECT created_at FROM voyr_plans WHERE idx = ?),
			    updated_at       = (SELECT updated_at FROM voyr_plans WHERE idx = ?)
			 WHERE idx = ?`,
			last, last, last, last, index,
		)
		if err != nil {
			return fmt.Errorf("remove plan: swap: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM voyr_plans WHERE idx = ?`, last); err != nil {
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
	var e credential.Entry
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT account, credential_id, expiration, created_at, updated_at
		 FROM voyr_entries WHERE account = ?`,
		account.String(),
	).Scan(&e.Account, &e.CredentialID, &e.Expiration, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		// Never-seen accounts read as empty entries.
		return credential.Entry{Account: account}, nil
	}
	if err != nil {
		return credential.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	e.CreatedAt = time.Unix(created, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
	return e, nil
}

func (s *Store) PutEntry(ctx context.Context, e credential.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_entries (account, credential_id, expiration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(account) DO UPDATE SET
		    credential_id = excluded.credential_id,
		    expiration    = excluded.expiration,
		    updated_at    = excluded.updated_at`,
		e.Account.String(), e.CredentialID, e.Expiration, e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *Store) FindByCredential(ctx context.Context, credID uint64) (credential.Entry, error) {
	var e credential.Entry
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT account, credential_id, expiration, created_at, updated_at
		 FROM voyr_entries WHERE credential_id = ? AND credential_id <> 0`,
		credID,
	).Scan(&e.Account, &e.CredentialID, &e.Expiration, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return credential.Entry{}, voyr.ErrUnknownCredential
	}
	if err != nil {
		return credential.Entry{}, fmt.Errorf("find by credential: %w", err)
	}
	e.CreatedAt = time.Unix(created, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
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
	err := s.db.QueryRowContext(ctx, `SELECT value FROM voyr_meta WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("meta %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("meta %q: %w", key, err)
	}
	return nil
}

// ==================== Receipts ====================

func (s *Store) AppendReceipt(ctx context.Context, r *receipt.Receipt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voyr_receipts
		 (id, kind, account, credential_id, plan_index, plan_price, duration_seconds,
		  periods, cost, extension_secs, new_expiration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), string(r.Kind), r.Account.String(), r.CredentialID,
		r.PlanIndex, r.PlanPrice, r.DurationSeconds,
		r.Periods, r.Cost, r.ExtensionSecs, r.NewExpiration,
		r.CreatedAt.Unix(), r.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append receipt: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, account types.Account, opts receipt.ListOpts) ([]*receipt.Receipt, error) {
	query := `SELECT id, kind, account, credential_id, plan_index, plan_price, duration_seconds,
	                 periods, cost, extension_secs, new_expiration, created_at, updated_at
	          FROM voyr_receipts WHERE account = ?`
	args := []any{account.String()}

	if opts.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(opts.Kind))
	}
	if !opts.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, opts.Since.Unix())
	}
	query += ` ORDER BY created_at, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, opts.Offset)
		}
	} else if opts.Offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	result := make([]*receipt.Receipt, 0)
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanReceipt(rows *sql.Rows) (*receipt.Receipt, error) {
	var r receipt.Receipt
	var rid, kind, account string
	var created, updated int64
	if err := rows.Scan(
		&rid, &kind, &account, &r.CredentialID, &r.PlanIndex, &r.PlanPrice, &r.DurationSeconds,
		&r.Periods, &r.Cost, &r.ExtensionSecs, &r.NewExpiration, &created, &updated,
	); err != nil {
		return nil, fmt.Errorf("scan receipt: %w", err)
	}

	parsed, err := id.ParseReceiptID(rid)
	if err != nil {
		return nil, err
	}
	r.ID = parsed
	r.Kind = receipt.Kind(kind)
	r.Account = types.Account(account)
	r.CreatedAt = time.Unix(created, 0).UTC()
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	return &r, nil
}
