package mongo

import (
	"time"

	"github.com/voyr/voyr-sub/credential"
	"github.com/voyr/voyr-sub/id"
	"github.com/voyr/voyr-sub/plan"
	"github.com/voyr/voyr-sub/receipt"
	"github.com/voyr/voyr-sub/types"
)

// planModel is the BSON shape of a catalog plan. The dense catalog
// index is the document id.
type planModel struct {
	Idx             int       `bson:"_id"`
	Price           int64     `bson:"price"`
	DurationSeconds int64     `bson:"duration_seconds"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toPlanModel(idx int, p plan.Plan) *planModel {
	return &planModel{
		Idx:             idx,
		Price:           p.Price.Int64(),
		DurationSeconds: p.DurationSeconds,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func fromPlanModel(m *planModel) plan.Plan {
	return plan.Plan{
		Entity:          types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Price:           types.Units(m.Price),
		DurationSeconds: m.DurationSeconds,
	}
}

// entryModel is the BSON shape of a ledger entry, keyed by account.
type entryModel struct {
	Account      string    `bson:"_id"`
	CredentialID int64     `bson:"credential_id"`
	Expiration   int64     `bson:"expiration"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toEntryModel(e credential.Entry) *entryModel {
	return &entryModel{
		Account:      e.Account.String(),
		CredentialID: int64(e.CredentialID),
		Expiration:   e.Expiration,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) credential.Entry {
	return credential.Entry{
		Entity:       types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Account:      types.Account(m.Account),
		CredentialID: uint64(m.CredentialID),
		Expiration:   m.Expiration,
	}
}

// receiptModel is the BSON shape of a payment receipt.
type receiptModel struct {
	ID              string    `bson:"_id"`
	Kind            string    `bson:"kind"`
	Account         string    `bson:"account"`
	CredentialID    int64     `bson:"credential_id"`
	PlanIndex       int       `bson:"plan_index"`
	PlanPrice       int64     `bson:"plan_price"`
	DurationSeconds int64     `bson:"duration_seconds"`
	Periods         int64     `bson:"periods"`
	Cost            int64     `bson:"cost"`
	ExtensionSecs   int64     `bson:"extension_secs"`
	NewExpiration   int64     `bson:"new_expiration"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toReceiptModel(r *receipt.Receipt) *receiptModel {
	return &receiptModel{
		ID:              r.ID.String(),
		Kind:            string(r.Kind),
		Account:         r.Account.String(),
		CredentialID:    int64(r.CredentialID),
		PlanIndex:       r.PlanIndex,
		PlanPrice:       r.PlanPrice.Int64(),
		DurationSeconds: r.DurationSeconds,
		Periods:         r.Periods,
		Cost:            r.Cost.Int64(),
		ExtensionSecs:   r.ExtensionSecs,
		NewExpiration:   r.NewExpiration,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func fromReceiptModel(m *receiptModel) (*receipt.Receipt, error) {
	rid, err := id.ParseReceiptID(m.ID)
	if err != nil {
		return nil, err
	}

	return &receipt.Receipt{
		Entity:          types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:              rid,
		Kind:            receipt.Kind(m.Kind),
		Account:         types.Account(m.Account),
		CredentialID:    uint64(m.CredentialID),
		PlanIndex:       m.PlanIndex,
		PlanPrice:       types.Units(m.PlanPrice),
		DurationSeconds: m.DurationSeconds,
		Periods:         m.Periods,
		Cost:            types.Units(m.Cost),
		ExtensionSecs:   m.ExtensionSecs,
		NewExpiration:   m.NewExpiration,
	}, nil
}

// metaModel stores singleton flags and counters keyed by name.
type metaModel struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}
