package cli

import (
	service "github.com/okian/fightmatch/internal/app"
	"github.com/okian/fightmatch/internal/config"
	"github.com/okian/fightmatch/pkg/logger"
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to the service.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithConfig skips config.Load and uses cfg.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithServiceOptions appends options to every service the App builds.
func WithServiceOptions(opts ...service.Option) Option {
	return func(a *App) {
		a.serviceOpts = append(a.serviceOpts, opts...)
	}
}
