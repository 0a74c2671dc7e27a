package extension

import (
	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/medium"
	"github.com/voyr/voyr-sub/plugin"
	"github.com/voyr/voyr-sub/store"
	"github.com/voyr/voyr-sub/types"
)

// Option configures the VOYR Sub Forge extension.
type Option func(*Extension)

// WithStore sets the store for the subscription service.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPaymentMedium sets the payment medium purchases are funded through.
func WithPaymentMedium(m medium.PaymentMedium) Option {
	return func(e *Extension) {
		e.medium = m
	}
}

// WithAuthority sets the provider of the rotatable owner account.
// Defaults to a fixed authority rooted at the configured creator.
func WithAuthority(a medium.AuthorityProvider) Option {
	return func(e *Extension) {
		e.authority = a
	}
}

// WithCreator sets the beneficiary account for payment proceeds.
func WithCreator(creator types.Account) Option {
	return func(e *Extension) {
		e.config.Creator = creator.String()
	}
}

// WithSymbol sets the catalog label.
func WithSymbol(symbol string) Option {
	return func(e *Extension) {
		e.config.Symbol = symbol
	}
}

// WithServiceOption passes a voyr.Option through to the underlying service.
func WithServiceOption(opt voyr.Option) Option {
	return func(e *Extension) {
		e.svcOpts = append(e.svcOpts, opt)
	}
}

// WithPlugin registers a service plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.svcOpts = append(e.svcOpts, voyr.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
