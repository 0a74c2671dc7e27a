package credential

import (
	"testing"
)

func TestEntryState(t *testing.T) {
	const now = int64(1_700_000_000)

	tests := []struct {
		name  string
		entry Entry
		want  State
	}{
		{"no credential", Entry{}, StateNone},
		{"active", Entry{CredentialID: 1, Expiration: now + 60}, StateActive},
		{"active at exact expiry", Entry{CredentialID: 1, Expiration: now}, StateActive},
		{"lapsed", Entry{CredentialID: 1, Expiration: now - 1}, StateLapsed},
		{"cleared after revoke", Entry{CredentialID: 0, Expiration: 0}, StateNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.State(now); got != tt.want {
				t.Errorf("State() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"first issuance", StateNone, StateActive, true},
		{"renewal while active", StateActive, StateActive, true},
		{"lapse", StateActive, StateLapsed, true},
		{"renewal after lapse", StateLapsed, StateActive, true},
		{"revoke active", StateActive, StateRetired, true},
		{"revoke lapsed", StateLapsed, StateRetired, true},
		{"reissue after retire", StateRetired, StateActive, true},
		{"none to lapsed", StateNone, StateLapsed, false},
		{"none to retired", StateNone, StateRetired, false},
		{"retired to lapsed", StateRetired, StateLapsed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	got := ValidTransitionsFrom(StateActive)
	want := []State{StateActive, StateLapsed, StateRetired}

	if len(got) != len(want) {
		t.Fatalf("ValidTransitionsFrom(active) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ValidTransitionsFrom(active)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestActiveAt(t *testing.T) {
	e := Entry{CredentialID: 3, Expiration: 100}
	if !e.ActiveAt(100) {
		t.Error("entry should be active at its exact expiration")
	}
	if e.ActiveAt(101) {
		t.Error("entry should not be active past expiration")
	}
	if (Entry{Expiration: 100}).ActiveAt(50) {
		t.Error("entry without a credential is never active")
	}
}
