// Package extension provides the Forge extension adapter for VOYR Sub.
//
// It implements the forge.Extension interface to integrate the subscription
// service into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.voyr" or "voyr" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	voyr "github.com/voyr/voyr-sub"
	"github.com/voyr/voyr-sub/medium"
	"github.com/voyr/voyr-sub/store"
	"github.com/voyr/voyr-sub/store/memory"
	"github.com/voyr/voyr-sub/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "voyr"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Creator subscription credential service"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts VOYR Sub as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	service   *voyr.Service
	store     store.Store
	medium    medium.PaymentMedium
	authority medium.AuthorityProvider
	svcOpts   []voyr.Option
}

// New creates a new VOYR Sub Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Service returns the underlying subscription service.
// This is nil until Register is called.
func (e *Extension) Service() *voyr.Service { return e.service }

// Register implements [forge.Extension]. It loads configuration,
// initializes the service, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.medium == nil {
		return errors.New("voyr: a payment medium is required; use WithPaymentMedium")
	}
	if e.config.Creator == "" {
		return errors.New("voyr: a creator account is required")
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	// Default to a fixed authority rooted at the creator.
	if e.authority == nil {
		e.authority = medium.StaticAuthority(types.Account(e.config.Creator))
	}

	opts := e.svcOpts
	if e.config.Spender != "" {
		opts = append(opts, voyr.WithSpender(types.Account(e.config.Spender)))
	}

	e.service = voyr.New(e.store, e.medium, e.authority,
		types.Account(e.config.Creator), e.config.Symbol, opts...)

	return vessel.Provide(fapp.Container(), func() (*voyr.Service, error) {
		return e.service, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.service == nil {
		return errors.New("voyr: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.service.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.service != nil {
		if err := e.service.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("voyr: store not initialized")
	}
	return e.store.Ping(ctx)
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("voyr: configuration is required but not found in config files; " +
				"ensure 'extensions.voyr' or 'voyr' key exists in your config")
		}

		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("voyr: configuration loaded",
		forge.F("creator", e.config.Creator),
		forge.F("symbol", e.config.Symbol),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.voyr" first (namespaced pattern).
	if cm.IsSet("extensions.voyr") {
		if err := cm.Bind("extensions.voyr", &cfg); err == nil {
			e.Logger().Debug("voyr: loaded config from file",
				forge.F("key", "extensions.voyr"),
			)
			return cfg, true
		}
		e.Logger().Warn("voyr: failed to bind extensions.voyr config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "voyr" key.
	if cm.IsSet("voyr") {
		if err := cm.Bind("voyr", &cfg); err == nil {
			e.Logger().Debug("voyr: loaded config from file",
				forge.F("key", "voyr"),
			)
			return cfg, true
		}
		e.Logger().Warn("voyr: failed to bind voyr config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Symbol == "" {
		cfg.Symbol = defaults.Symbol
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.Creator == "" && programmaticConfig.Creator != "" {
		yamlConfig.Creator = programmaticConfig.Creator
	}
	if yamlConfig.Symbol == "" && programmaticConfig.Symbol != "" {
		yamlConfig.Symbol = programmaticConfig.Symbol
	}
	if yamlConfig.Spender == "" && programmaticConfig.Spender != "" {
		yamlConfig.Spender = programmaticConfig.Spender
	}

	return e.mergeWithDefaults(yamlConfig)
}
