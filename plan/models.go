// Package plan defines the purchasable subscription plan catalog types.
package plan

import (
	"fmt"

	"github.com/voyr/voyr-sub/types"
)

// Plan is a priced, fixed-duration subscription unit purchasable in integer
// multiples ("periods").
//
// Plans live in a dense, index-addressed catalog. The index is NOT a stable
// identifier: removing a plan moves the former last plan into the freed
// slot, so callers must not hold indexes across catalog mutations.
type Plan struct {
	types.Entity
	// Price is the cost of one period in payment-medium units.
	// Zero is a valid price (free plan).
	Price types.Units `json:"price"`
	// DurationSeconds is the entitlement length one period buys.
	// Zero is accepted and yields a zero-length extension.
	DurationSeconds int64 `json:"duration_seconds"`
}

// Validate checks plan bounds. Price and duration of zero are both accepted;
// only negative values are rejected.
func (p Plan) Validate() error {
	if p.Price.IsNegative() {
		return fmt.Errorf("plan: negative price %d", p.Price.Int64())
	}
	if p.DurationSeconds < 0 {
		return fmt.Errorf("plan: negative duration %d", p.DurationSeconds)
	}
	return nil
}

// Cost returns the total cost for the given number of periods.
// It fails on int64 overflow rather than wrapping.
func (p Plan) Cost(periods int64) (types.Units, error) {
	return types.MulUnits(p.Price, periods)
}

// Extension returns the total entitlement extension in seconds for the given
// number of periods. It fails on int64 overflow rather than wrapping.
func (p Plan) Extension(periods int64) (int64, error) {
	return types.MulSeconds(p.DurationSeconds, periods)
}
