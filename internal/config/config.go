// Package config defines service configuration and its loading.
//
// Values are layered from low to high precedence: built-in defaults, an
// optional YAML file, then GOING_-prefixed environment variables.
package config

import (
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/scraper"
)

// Config contains process configuration
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// FetchTimeout bounds each source fetch.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// UserAgent is sent with every source request.
	UserAgent string `koanf:"user_agent"`

	JockeyClubURL string `koanf:"jockeyclub_url"`
	RacingPostURL string `koanf:"racingpost_url"`
	TurfTraxURL   string `koanf:"turftrax_url"`

	// CacheEnabled turns on the in-process response cache. Off by default;
	// deployments behind a CDN rely on the Cache-Control header instead.
	CacheEnabled bool `koanf:"cache_enabled"`

	// CacheFreshTTL is how long a resolved result is served without
	// revalidation; CacheStaleTTL is how much longer it may be served
	// while a revalidation runs.
	CacheFreshTTL time.Duration `koanf:"cache_fresh_ttl"`
	CacheStaleTTL time.Duration `koanf:"cache_stale_ttl"`
}

// New returns a Config populated with defaults
func New() *Config {
	src := scraper.DefaultSources()
	return &Config{
		Addr:          ":8080",
		LogLevel:      "info",
		FetchTimeout:  scraper.Timeout,
		UserAgent:     scraper.UserAgent,
		JockeyClubURL: src.JockeyClub,
		RacingPostURL: src.RacingPost,
		TurfTraxURL:   src.TurfTrax,
		CacheEnabled:  false,
		CacheFreshTTL: 30 * time.Minute,
		CacheStaleTTL: 60 * time.Minute,
	}
}

// Sources returns the configured source URLs
func (c *Config) Sources() scraper.Sources {
	return scraper.Sources{
		JockeyClub: c.JockeyClubURL,
		RacingPost: c.RacingPostURL,
		TurfTrax:   c.TurfTraxURL,
	}
}
