package dataset

import (
	"github.com/okian/fightmatch/internal/adapters/scrape"
	"github.com/okian/fightmatch/pkg/logger"
)

type options struct {
	log    logger.Logger
	parser *scrape.Parser
}

// Option configures a Builder or a Store.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithParser sets the parser used to read raw pages. Builders only.
func WithParser(p *scrape.Parser) Option {
	return func(o *options) {
		if p != nil {
			o.parser = p
		}
	}
}

func apply(opts []Option) options {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parser == nil {
		o.parser = scrape.NewParser()
	}
	return o
}
