package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pfrederiksen/cheltenham-going/internal/logger"
)

const (
	// EnvPrefix prefixes every configuration environment variable
	EnvPrefix = "GOING_"

	// EnvConfigFile names a YAML file to load when no path is given
	EnvConfigFile = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, an optional YAML file and env
// vars. path wins over GOING_CONFIG; both may be empty.
func Load(_ context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// GOING_FETCH_TIMEOUT -> fetch_timeout. Keys are flat so underscores stay.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr must not be empty")
	case c.FetchTimeout <= 0:
		return errors.New("fetch_timeout must be positive")
	case c.JockeyClubURL == "" || c.RacingPostURL == "" || c.TurfTraxURL == "":
		return errors.New("source urls must not be empty")
	case c.CacheEnabled && c.CacheFreshTTL <= 0:
		return errors.New("cache_fresh_ttl must be positive when the cache is enabled")
	case c.CacheStaleTTL < 0:
		return errors.New("cache_stale_ttl must not be negative")
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
