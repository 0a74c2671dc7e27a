package credential

import "slices"

// State is the derived lifecycle state of an account's credential.
// Active vs Lapsed is a read over the stored expiration, not a stored field.
type State string

const (
	StateNone    State = "none"    // no credential held
	StateActive  State = "active"  // credential held, expiration >= now
	StateLapsed  State = "lapsed"  // credential held, expiration < now
	StateRetired State = "retired" // credential revoked; id permanently retired
)

// Transition represents a lifecycle state transition.
type Transition struct {
	From State
	To   State
}

// validTransitions defines all allowed lifecycle transitions.
var validTransitions = map[Transition]bool{
	{StateNone, StateActive}:    true, // first issuance
	{StateActive, StateActive}:  true, // renewal stacks onto current expiry
	{StateActive, StateLapsed}:  true, // expiration passed
	{StateLapsed, StateActive}:  true, // renewal restarts the clock from now
	{StateActive, StateRetired}: true, // owner revocation
	{StateLapsed, StateRetired}: true, // owner revocation after lapse
	{StateRetired, StateActive}: true, // fresh issue, new lifecycle instance
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	return validTransitions[Transition{from, to}]
}

// ValidTransitionsFrom returns all valid target states from the given state.
func ValidTransitionsFrom(from State) []State {
	targets := make([]State, 0)
	for t := range validTransitions {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}

	// Stabilize ordering for deterministic callers/tests.
	slices.Sort(targets)
	return targets
}
