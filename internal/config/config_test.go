package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/fightmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should carry the scraping defaults", func() {
			convey.So(cfg.BaseURL, convey.ShouldEqual, "https://www.ufcstats.com")
			convey.So(cfg.UserAgent, convey.ShouldEqual, "FightMatch/0.1 (UFC decision-support; rate-limited)")
			convey.So(cfg.RequestTimeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.MaxRetries, convey.ShouldEqual, 3)
			convey.So(cfg.RetryBackoffBase, convey.ShouldEqual, 2.0)
			convey.So(cfg.RateLimitInterval, convey.ShouldEqual, time.Second)
			convey.So(cfg.RateLimitJitter, convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.CacheTTL, convey.ShouldEqual, 7*24*time.Hour)
		})

		convey.Convey("And the matchmaking defaults", func() {
			convey.So(cfg.PrioritizeContenderClarity, convey.ShouldBeTrue)
			convey.So(cfg.PrioritizeAction, convey.ShouldBeFalse)
			convey.So(cfg.AllowShortNotice, convey.ShouldBeFalse)
			convey.So(cfg.AvoidImmediateRematch, convey.ShouldBeTrue)
			convey.So(cfg.DecayHalfLifeDays, convey.ShouldEqual, 365.0)
			convey.So(cfg.MaxInactiveDays, convey.ShouldEqual, 400)
			convey.So(cfg.WinnerPolicy, convey.ShouldEqual, config.WinnerPolicyStrict)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
		})

		convey.Convey("And it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.FeaturesPath(), convey.ShouldEqual, "data/features/features.csv")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = " " },
			"zero retries":     func(c *config.Config) { c.MaxRetries = 0 },
			"negative jitter":  func(c *config.Config) { c.RateLimitJitter = -time.Second },
			"zero ttl":         func(c *config.Config) { c.CacheTTL = 0 },
			"zero half-life":   func(c *config.Config) { c.DecayHalfLifeDays = 0 },
			"unknown policy":   func(c *config.Config) { c.WinnerPolicy = "guess" },
			"no workers":       func(c *config.Config) { c.WorkerCount = 0 },
			"ratio above one":  func(c *config.Config) { c.BreakerFailureRatio = 1.5 },
			"negative api cap": func(c *config.Config) { c.APIRateLimit = -1 },
			"zero api window":  func(c *config.Config) { c.APIRateWindow = 0 },
			"zero api timeout": func(c *config.Config) { c.APITimeout = 0 },
		}
		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}

func TestConfig_CORSOriginList(t *testing.T) {
	convey.Convey("Given a comma-separated origin list", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then the default disables CORS", func() {
			convey.So(cfg.CORSOriginList(), convey.ShouldBeEmpty)
		})

		convey.Convey("Then blanks are dropped and entries trimmed", func() {
			cfg.CORSOrigins = " https://a.test, ,https://b.test "
			convey.So(cfg.CORSOriginList(), convey.ShouldResemble, []string{"https://a.test", "https://b.test"})
		})
	})
}
