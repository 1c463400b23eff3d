package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pfrederiksen/cheltenham-going/internal/config"
	"github.com/pfrederiksen/cheltenham-going/internal/scraper"
)

var configEnvVars = []string{
	"GOING_CONFIG",
	"GOING_ADDR",
	"GOING_LOG_LEVEL",
	"GOING_FETCH_TIMEOUT",
	"GOING_USER_AGENT",
	"GOING_JOCKEYCLUB_URL",
	"GOING_RACINGPOST_URL",
	"GOING_TURFTRAX_URL",
	"GOING_CACHE_ENABLED",
	"GOING_CACHE_FRESH_TTL",
	"GOING_CACHE_STALE_TTL",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "going.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

const fileConfig = `
addr: ":9090"
log_level: debug
fetch_timeout: 5s
racingpost_url: "http://racecards.test/cheltenham"
cache_enabled: true
cache_fresh_ttl: 10m
`

func TestLoad(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then the defaults are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.FetchTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(cfg.UserAgent, convey.ShouldEqual, scraper.UserAgent)
				convey.So(cfg.Sources(), convey.ShouldResemble, scraper.DefaultSources())
				convey.So(cfg.CacheEnabled, convey.ShouldBeFalse)
				convey.So(cfg.CacheFreshTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.CacheStaleTTL, convey.ShouldEqual, 60*time.Minute)
			})
		})

		convey.Convey("When loading with environment variables", func() {
			_ = os.Setenv("GOING_ADDR", ":7070")
			_ = os.Setenv("GOING_FETCH_TIMEOUT", "3s")
			_ = os.Setenv("GOING_TURFTRAX_URL", "http://turftrax.test/")
			_ = os.Setenv("GOING_CACHE_ENABLED", "true")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.FetchTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.TurfTraxURL, convey.ShouldEqual, "http://turftrax.test/")
				convey.So(cfg.CacheEnabled, convey.ShouldBeTrue)
				convey.So(cfg.JockeyClubURL, convey.ShouldEqual, scraper.JockeyClubURL)
			})
		})

		convey.Convey("When loading a YAML file by path", func() {
			path := writeConfigFile(t, fileConfig)

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then the file values are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.FetchTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.RacingPostURL, convey.ShouldEqual, "http://racecards.test/cheltenham")
				convey.So(cfg.CacheEnabled, convey.ShouldBeTrue)
				convey.So(cfg.CacheFreshTTL, convey.ShouldEqual, 10*time.Minute)
				convey.So(cfg.CacheStaleTTL, convey.ShouldEqual, 60*time.Minute)
			})
		})

		convey.Convey("When the file comes from GOING_CONFIG and env overrides it", func() {
			_ = os.Setenv("GOING_CONFIG", writeConfigFile(t, fileConfig))
			_ = os.Setenv("GOING_ADDR", ":6060")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.FetchTimeout, convey.ShouldEqual, 5*time.Second)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a setting is invalid", func() {
			cases := map[string]string{
				"GOING_FETCH_TIMEOUT":   "0s",
				"GOING_LOG_LEVEL":       "loud",
				"GOING_CACHE_STALE_TTL": "-1m",
			}

			for name, value := range cases {
				clearConfigEnvVars()
				_ = os.Setenv(name, value)

				_, err := config.Load(ctx, "")
				convey.So(err, convey.ShouldNotBeNil)
			}
		})

		convey.Convey("When the file blanks out required values", func() {
			path := writeConfigFile(t, "addr: \"\"\njockeyclub_url: \"\"\n")

			_, err := config.Load(ctx, path)

			convey.Convey("Then validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("It is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Enabling the cache without a fresh TTL is invalid", func() {
			cfg.CacheEnabled = true
			cfg.CacheFreshTTL = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("A zero stale TTL is allowed", func() {
			cfg.CacheStaleTTL = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
