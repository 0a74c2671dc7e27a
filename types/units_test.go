package types

import (
	"errors"
	"math"
	"testing"
)

func TestMulUnits(t *testing.T) {
	tests := []struct {
		name    string
		a       Units
		b       int64
		want    Units
		wantErr bool
	}{
		{name: "simple", a: 100, b: 3, want: 300},
		{name: "zero amount", a: 0, b: 5, want: 0},
		{name: "zero multiplier", a: 100, b: 0, want: 0},
		{name: "negative multiplier", a: 100, b: -2, want: -200},
		{name: "max no overflow", a: Units(math.MaxInt64), b: 1, want: Units(math.MaxInt64)},
		{name: "overflow", a: Units(math.MaxInt64), b: 2, wantErr: true},
		{name: "large overflow", a: Units(1) << 40, b: 1 << 40, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulUnits(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Fatalf("err = %v, want ErrOverflow", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MulUnits(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAddSeconds(t *testing.T) {
	tests := []struct {
		name    string
		base    int64
		delta   int64
		want    int64
		wantErr bool
	}{
		{name: "simple", base: 1_700_000_000, delta: 2_592_000, want: 1_702_592_000},
		{name: "zero delta", base: 42, delta: 0, want: 42},
		{name: "negative delta", base: 100, delta: -40, want: 60},
		{name: "positive overflow", base: math.MaxInt64, delta: 1, wantErr: true},
		{name: "negative overflow", base: math.MinInt64, delta: -1, wantErr: true},
		{name: "exactly max", base: math.MaxInt64 - 10, delta: 10, want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddSeconds(tt.base, tt.delta)
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Fatalf("err = %v, want ErrOverflow", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("AddSeconds(%d, %d) = %d, want %d", tt.base, tt.delta, got, tt.want)
			}
		})
	}
}

func TestMulSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration int64
		periods  int64
		want     int64
		wantErr  bool
	}{
		{name: "simple", duration: 2_592_000, periods: 3, want: 7_776_000},
		{name: "zero duration", duration: 0, periods: 12, want: 0},
		{name: "zero periods", duration: 2_592_000, periods: 0, want: 0},
		{name: "overflow", duration: 1 << 62, periods: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulSeconds(tt.duration, tt.periods)
			if tt.wantErr {
				if !errors.Is(err, ErrOverflow) {
					t.Fatalf("err = %v, want ErrOverflow", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MulSeconds(%d, %d) = %d, want %d", tt.duration, tt.periods, got, tt.want)
			}
		})
	}
}

func TestUnitsHelpers(t *testing.T) {
	if !Units(0).IsZero() {
		t.Error("Units(0).IsZero() should be true")
	}
	if Units(1).IsZero() {
		t.Error("Units(1).IsZero() should be false")
	}
	if !Units(-5).IsNegative() {
		t.Error("Units(-5).IsNegative() should be true")
	}
	if Units(5).IsNegative() {
		t.Error("Units(5).IsNegative() should be false")
	}
	if Units(42).Int64() != 42 {
		t.Error("Units(42).Int64() should be 42")
	}
	if got := Units(7).String(); got != "7 units" {
		t.Errorf("String() = %q, want %q", got, "7 units")
	}
}

func TestAccountNormalize(t *testing.T) {
	if got := Normalize("ALICE"); got != "alice" {
		t.Errorf("Normalize(ALICE) = %q, want alice", got)
	}
	if !Account("Bob").Equal("bob") {
		t.Error("account comparison should be case-insensitive")
	}
	if !ZeroAccount.IsZero() {
		t.Error("ZeroAccount.IsZero() should be true")
	}
	if Account("x").IsZero() {
		t.Error("non-empty account should not be zero")
	}
}
