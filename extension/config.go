package extension

// Config holds the VOYR Sub extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.voyr" or "voyr" keys).
type Config struct {
	// Creator is the beneficiary account for all payment proceeds.
	Creator string `json:"creator" mapstructure:"creator" yaml:"creator"`

	// Symbol is the catalog label reported by the service.
	Symbol string `json:"symbol" mapstructure:"symbol" yaml:"symbol"`

	// Spender is the account the payment medium recognizes the service as
	// when checking delegated allowances. Defaults to Creator.
	Spender string `json:"spender" mapstructure:"spender" yaml:"spender"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Symbol: "VOYR",
	}
}
