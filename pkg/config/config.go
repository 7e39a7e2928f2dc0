// Package config loads the agentsync run configuration. Values are layered:
// built-in defaults, then the project's .agentsync.yaml, then AGENTSYNC_*
// environment variables, highest last.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/agentsync-dev/agentsync/pkg/errors"
	"github.com/agentsync-dev/agentsync/pkg/providers"
)

// Config is the effective run configuration.
type Config struct {
	// Providers lists the provider names to sync.
	Providers []string `koanf:"providers"`

	// Global installs into the user's home scope instead of the project.
	Global bool `koanf:"global"`

	// Force overrides conflict and deletion-respect decisions.
	Force bool `koanf:"force"`

	// SourceDir overrides the canonical source directory.
	SourceDir string `koanf:"source_dir"`

	// Verbosity sets log detail, 0 through 3.
	Verbosity int `koanf:"verbosity"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"providers": []string{providers.Claude},
		"global":    false,
		"force":     false,
		"verbosity": 0,
	}
}

// Load builds the configuration from defaults, the config file at path (if
// it exists) and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
			}
		}
	}

	// AGENTSYNC_FORCE=1, AGENTSYNC_PROVIDERS=claude,codex, and so on.
	if err := k.Load(env.Provider("AGENTSYNC_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AGENTSYNC_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	cfg.Providers = splitProviders(cfg.Providers)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitProviders tolerates the env form "claude,codex" arriving as a single
// element.
func splitProviders(in []string) []string {
	var out []string
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) validate() error {
	if len(c.Providers) == 0 {
		return errors.New(errors.ErrInvalidInput, "no providers configured")
	}
	for _, p := range c.Providers {
		if !providers.Known(p) {
			return errors.Newf(errors.ErrProviderUnknown,
				"unknown provider %q (supported: %s)", p, strings.Join(providers.Names(), ", "))
		}
	}
	if c.Verbosity < 0 || c.Verbosity > 3 {
		return errors.Newf(errors.ErrInvalidInput, "verbosity %d out of range 0..3", c.Verbosity)
	}
	return nil
}
