// Package mongo provides a Store implementation backed by MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	vstore "github.com/voyr/voyr-sub/store"
	"github.com/voyr/voyr-sub/types"
)

// Collection name constants.
const (
	colPlans    = "voyr_plans"
	colEntries  = "voyr_entries"
	colMeta     = "voyr_meta"
	colReceipts = "voyr_receipts"
)

// compile-time interface check
var _ vstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
type Store struct {
	db *mongo.Database
}

// New creates a MongoDB store over the given database.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *mongo.Database { return s.db }

// Migrate creates indexes and seeds the singleton meta documents.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Collection(colEntries).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "credential_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"credential_id": bson.M{"$gt": 0}}),
	})
	if err != nil {
		return fmt.Errorf("%w: entries index: %v", voyr.ErrMigrationFailed, err)
	}

	_, err = s.db.Collection(colReceipts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("%w: receipts index: %v", voyr.ErrMigrationFailed, err)
	}

	for key, value := range map[string]string{"credential_counter": "1", "paused": "0"} {
		_, err = s.db.Collection(colMeta).UpdateOne(ctx,
			bson.M{"_id": key},
			bson.M{"$setOnInsert": bson.M{"value": value}},
			options.UpdateOne().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("%w: seed meta %q: %v", voyr.ErrMigrationFailed, key, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	return s.db.Client().Disconnect(context.Background())
}

// ==================== Plan catalog ====================

func (s *Store) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	cur, err := s.db.Collection(colPlans).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer cur.Close(ctx)

	plans := make([]plan.Plan, 0)
	for cur.Next(ctx) {
		var m planModel
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		plans = append(plans, fromPlanModel(&m))
	}
	return plans, cur.Err()
}

func (s *Store) GetPlan(ctx context.Context, index int) (plan.Plan, error) {
	var m planModel
	err := s.db.Collection(colPlans).FindOne(ctx, bson.M{"_id": index}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return plan.Plan{}, voyr.ErrIndexOutOfRange
	}
	if err != nil {
		return plan.Plan{}, fmt.Errorf("get plan %d: %w", index, err)
	}
	return fromPlanModel(&m), nil
}

func (s *Store) AppendPlan(ctx context.Context, p plan.Plan) error {
	count, err := s.db.Collection(colPlans).CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("append plan: count: %w", err)
	}

	_, err = s.db.Collection(colPlans).InsertOne(ctx, toPlanModel(int(count), p))
	if err != nil {
		return fmt.Errorf("append plan: %w", err)
	}
	return nil
}

func (s *Store) SetPlan(ctx context.Context, index int, p plan.Plan) error {
	res, err := s.db.Collection(colPlans).UpdateOne(ctx,
		bson.M{"_id": index},
		bson.M{"$set": bson.M{
			"price":            p.Price.Int64(),
			"duration_seconds": p.DurationSeconds,
			"updated_at":       p.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("set plan %d: %w", index, err)
	}
	if res.MatchedCount == 0 {
		return voyr.ErrIndexOutOfRange
	}
	return nil
}

// RemovePlan reproduces swap-with-last-then-shrink: the former last plan
// takes the freed index and the catalog shrinks by one.
func (s *Store) RemovePlan(ctx context.Context, index int) error {
	count, err := s.db.Collection(colPlans).CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("remove plan: count: %w", err)
	}
	if index < 0 || int64(index) >= count {
		return voyr.ErrIndexOutOfRange
	}

	last := int(count - 1)
	if index != last {
		var m planModel
		if err := s.db.Collection(colPlans).FindOne(ctx, bson.M{"_id": last}).Decode(&m); err != nil {
			return fmt.Errorf("remove plan: read last: %w", err)
		}
		_, err = s.db.Collection(colPlans).UpdateOne(ctx,
			bson.M{"_id": index},
			bson.M{"$set": bson.M{
				"price":            m.Price,
				"duration_seconds": m.DurationSeconds,
				"created_at":       m.CreatedAt,
				"updated_at":       m.UpdatedAt,
			}},
		)
		if err != nil {
			return fmt.Errorf("remove plan: swap: %w", err)
		}
	}

	if _, err := s.db.Collection(colPlans).DeleteOne(ctx, bson.M{"_id": last}); err != nil {
		return fmt.Errorf("remove plan: shrink: %w", err)
	}
	return nil
}

func (s *Store) PlanCount(ctx context.Context) (int, error) {
	count, err := s.db.Collection(colPlans).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("plan count: %w", err)
	}
	return int(count), nil
}

// ==================== Ledger ====================

func (s *Store) GetEntry(ctx context.Context, account types.Account) (credential.Entry, error) {
	var m entryModel
	err := s.db.Collection(colEntries).FindOne(ctx, bson.M{"_id": account.String()}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Never-seen accounts read as empty entries.
		return credential.Entry{Account: account}, nil
	}
	if err != nil {
		return credential.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return fromEntryModel(&m), nil
}

func (s *Store) PutEntry(ctx context.Context, e credential.Entry) error {
	_, err := s.db.Collection(colEntries).ReplaceOne(ctx,
		bson.M{"_id": e.Account.String()},
		toEntryModel(e),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *Store) FindByCredential(ctx context.Context, credID uint64) (credential.Entry, error) {
	if credID == credential.None {
		return credential.Entry{}, voyr.ErrUnknownCredential
	}

	var m entryModel
	err := s.db.Collection(colEntries).FindOne(ctx, bson.M{"credential_id": int64(credID)}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return credential.Entry{}, voyr.ErrUnknownCredential
	}
	if err != nil {
		return credential.Entry{}, fmt.Errorf("find by credential: %w", err)
	}
	return fromEntryModel(&m), nil
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
	var m metaModel
	err := s.db.Collection(colMeta).FindOne(ctx, bson.M{"_id": key}).Decode(&m)
	if err != nil {
		return "", fmt.Errorf("meta %q: %w", key, err)
	}
	return m.Value, nil
}

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.Collection(colMeta).UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("meta %q: %w", key, err)
	}
	return nil
}

// ==================== Receipts ====================

func (s *Store) AppendReceipt(ctx context.Context, r *receipt.Receipt) error {
	_, err := s.db.Collection(colReceipts).InsertOne(ctx, toReceiptModel(r))
	if err != nil {
		return fmt.Errorf("append receipt: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, account types.Account, opts receipt.ListOpts) ([]*receipt.Receipt, error) {
	filter := bson.M{"account": account.String()}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if !opts.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": opts.Since}
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(opts.Offset))
	}

	cur, err := s.db.Collection(colReceipts).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*receipt.Receipt, 0)
	for cur.Next(ctx) {
		var m receiptModel
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode receipt: %w", err)
		}
		r, err := fromReceiptModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, cur.Err()
}
