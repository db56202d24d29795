// Package config defines process configuration and its loading hooks.
//
// Conventions:
//   - Keys are flat and snake_case; the koanf tag is the key.
//   - New(ctx) returns the defaults; Load(ctx) layers file and env on top.
//   - Validation errors wrap ErrInvalidConfig, provider errors wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Winner flag policies accepted by WinnerPolicy.
const (
	WinnerPolicyStrict     = "strict"
	WinnerPolicyFirstMatch = "first_match"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for `serve`.
	Addr string `koanf:"addr"`

	// Source site and politeness.
	BaseURL           string        `koanf:"base_url"`
	UserAgent         string        `koanf:"user_agent"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBackoffBase  float64       `koanf:"retry_backoff_base"`
	RateLimitInterval time.Duration `koanf:"rate_limit_interval"`
	RateLimitJitter   time.Duration `koanf:"rate_limit_jitter"`

	// Raw response cache.
	CacheDir string        `koanf:"cache_dir"`
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Pipeline locations.
	RawDir       string `koanf:"raw_dir"`
	ProcessedDir string `koanf:"processed_dir"`
	FeaturesDir  string `koanf:"features_dir"`

	// WinnerPolicy decides ambiguous win/loss flags: strict or first_match.
	WinnerPolicy string `koanf:"winner_policy"`

	// Matchmaking knobs.
	PrioritizeContenderClarity bool    `koanf:"prioritize_contender_clarity"`
	PrioritizeAction           bool    `koanf:"prioritize_action"`
	AllowShortNotice           bool    `koanf:"allow_short_notice"`
	AvoidImmediateRematch      bool    `koanf:"avoid_immediate_rematch"`
	DecayHalfLifeDays          float64 `koanf:"decay_half_life_days"`
	MaxInactiveDays            int     `koanf:"max_inactive_days"`

	// Board computation for the API.
	WorkerCount int `koanf:"worker_count"`
	QueueSize   int `koanf:"queue_size"`

	// Circuit breaker around the source site.
	BreakerEnabled      bool          `koanf:"breaker_enabled"`
	BreakerMinRequests  int           `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`

	// Per-IP API rate limit; zero disables it.
	APIRateLimit  int           `koanf:"api_rate_limit"`
	APIRateWindow time.Duration `koanf:"api_rate_window"`

	// APITimeout bounds one API request.
	APITimeout time.Duration `koanf:"api_timeout"`

	// CORSOrigins is a comma-separated origin allow list; empty disables CORS.
	CORSOrigins string `koanf:"cors_origins"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                   "info",
		Addr:                       ":9080",
		BaseURL:                    "https://www.ufcstats.com",
		UserAgent:                  "FightMatch/0.1 (UFC decision-support; rate-limited)",
		RequestTimeout:             30 * time.Second,
		MaxRetries:                 3,
		RetryBackoffBase:           2.0,
		RateLimitInterval:          time.Second,
		RateLimitJitter:            300 * time.Millisecond,
		CacheDir:                   "data/raw/ufcstats",
		CacheTTL:                   7 * 24 * time.Hour,
		RawDir:                     "data/raw",
		ProcessedDir:               "data/processed",
		FeaturesDir:                "data/features",
		WinnerPolicy:               WinnerPolicyStrict,
		PrioritizeContenderClarity: true,
		PrioritizeAction:           false,
		AllowShortNotice:           false,
		AvoidImmediateRematch:      true,
		DecayHalfLifeDays:          365,
		MaxInactiveDays:            400,
		WorkerCount:                runtime.NumCPU(),
		QueueSize:                  1024,
		BreakerEnabled:             true,
		BreakerMinRequests:         5,
		BreakerFailureRatio:        0.6,
		BreakerTimeout:             2 * time.Minute,
		APIRateLimit:               120,
		APIRateWindow:              time.Minute,
		APITimeout:                 30 * time.Second,
	}
}

// FeaturesPath is the features table inside FeaturesDir.
func (c *Config) FeaturesPath() string {
	return strings.TrimRight(c.FeaturesDir, "/") + "/features.csv"
}

// CORSOriginList splits CORSOrigins, dropping blanks.
func (c *Config) CORSOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max_retries must be >= 1, got %d", ErrInvalidConfig, c.MaxRetries)
	case c.RetryBackoffBase < 0:
		return fmt.Errorf("%w: retry_backoff_base must be >= 0", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case c.RateLimitInterval < 0 || c.RateLimitJitter < 0:
		return fmt.Errorf("%w: rate limit interval and jitter must be >= 0", ErrInvalidConfig)
	case c.CacheTTL <= 0:
		return fmt.Errorf("%w: cache_ttl must be positive", ErrInvalidConfig)
	case c.DecayHalfLifeDays <= 0:
		return fmt.Errorf("%w: decay_half_life_days must be positive", ErrInvalidConfig)
	case c.WinnerPolicy != WinnerPolicyStrict && c.WinnerPolicy != WinnerPolicyFirstMatch:
		return fmt.Errorf("%w: winner_policy must be %q or %q, got %q", ErrInvalidConfig, WinnerPolicyStrict, WinnerPolicyFirstMatch, c.WinnerPolicy)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be >= 1", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be >= 1", ErrInvalidConfig)
	case c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1:
		return fmt.Errorf("%w: breaker_failure_ratio must be in (0, 1]", ErrInvalidConfig)
	case c.APIRateLimit < 0:
		return fmt.Errorf("%w: api_rate_limit must be >= 0", ErrInvalidConfig)
	case c.APIRateLimit > 0 && c.APIRateWindow <= 0:
		return fmt.Errorf("%w: api_rate_window must be positive when api_rate_limit is set", ErrInvalidConfig)
	case c.APITimeout <= 0:
		return fmt.Errorf("%w: api_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
