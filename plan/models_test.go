package plan

import (
	"math"
	"testing"

	"github.com/voyr/voyr-sub/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr bool
	}{
		{"typical", Plan{Price: 100, DurationSeconds: 2_592_000}, false},
		{"free plan", Plan{Price: 0, DurationSeconds: 3600}, false},
		{"zero duration", Plan{Price: 50, DurationSeconds: 0}, false},
		{"negative price", Plan{Price: -1, DurationSeconds: 3600}, true},
		{"negative duration", Plan{Price: 1, DurationSeconds: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCost(t *testing.T) {
	p := Plan{Price: 100, DurationSeconds: 2_592_000}

	cost, err := p.Cost(3)
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != types.Units(300) {
		t.Errorf("Cost(3) = %d, want 300", cost)
	}

	if _, err := (Plan{Price: types.Units(math.MaxInt64)}).Cost(2); err == nil {
		t.Error("expected overflow error")
	}
}

func TestExtension(t *testing.T) {
	p := Plan{Price: 100, DurationSeconds: 2_592_000}

	ext, err := p.Extension(2)
	if err != nil {
		t.Fatalf("Extension: %v", err)
	}
	if ext != 2*2_592_000 {
		t.Errorf("Extension(2) = %d, want %d", ext, 2*2_592_000)
	}

	if _, err := (Plan{DurationSeconds: math.MaxInt64}).Extension(2); err == nil {
		t.Error("expected overflow error")
	}

	// Zero-duration plans extend by nothing, by contract.
	ext, err = Plan{Price: 10}.Extension(5)
	if err != nil || ext != 0 {
		t.Errorf("zero duration Extension(5) = %d, %v, want 0, nil", ext, err)
	}
}
