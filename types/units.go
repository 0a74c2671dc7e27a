package types

import (
	"errors"
	"fmt"
	"math"
)

// Units is an amount denominated in the payment medium's smallest unit.
// All arithmetic is integer-only and overflow-checked — a computation that
// would wrap returns ErrOverflow instead of producing a silently wrong
// amount.
type Units int64

// ErrOverflow is returned when a checked computation exceeds int64 range.
var ErrOverflow = errors.New("types: integer overflow")

// MulUnits returns a*b, failing with ErrOverflow if the product does not
// fit in int64.
func MulUnits(a Units, b int64) (Units, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := int64(a) * b
	if p/b != int64(a) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return Units(p), nil
}

// AddSeconds returns base+delta for Unix-second timestamps, failing with
// ErrOverflow on wraparound.
func AddSeconds(base, delta int64) (int64, error) {
	if delta > 0 && base > math.MaxInt64-delta {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, base, delta)
	}
	if delta < 0 && base < math.MinInt64-delta {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, base, delta)
	}
	return base + delta, nil
}

// MulSeconds returns duration*periods for extension computation, failing
// with ErrOverflow if the product does not fit in int64.
func MulSeconds(duration, periods int64) (int64, error) {
	if duration == 0 || periods == 0 {
		return 0, nil
	}
	p := duration * periods
	if p/periods != duration {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, duration, periods)
	}
	return p, nil
}

// IsZero returns true if the amount is zero.
func (u Units) IsZero() bool { return u == 0 }

// IsNegative returns true if the amount is less than zero.
func (u Units) IsNegative() bool { return u < 0 }

// Int64 returns the amount as a raw int64.
func (u Units) Int64() int64 { return int64(u) }

// String formats the amount for logs.
func (u Units) String() string { return fmt.Sprintf("%d units", int64(u)) }
