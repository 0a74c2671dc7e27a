package voyr

import "github.com/voyr/voyr-sub/types"

// Re-export common types for convenience so users don't have to import the
// types package.

// Account is re-exported from the types package.
type Account = types.Account

// Units is re-exported from the types package.
type Units = types.Units

// Entity is re-exported from the types package.
type Entity = types.Entity

// ZeroAccount is the zero account.
const ZeroAccount = types.ZeroAccount

// Re-export constructors and helpers.
var (
	NewEntity = types.NewEntity
	Normalize = types.Normalize
)
