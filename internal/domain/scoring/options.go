package scoring

// Option configures a Ranker.
type Option func(*Ranker)

// WithConfig replaces the business knobs.
func WithConfig(cfg Config) Option {
	return func(r *Ranker) {
		r.cfg = cfg
	}
}

// WithHalfLife overrides the decay half-life in days. Non-positive values are ignored.
func WithHalfLife(days float64) Option {
	return func(r *Ranker) {
		if days > 0 {
			r.cfg.DecayHalfLifeDays = days
		}
	}
}

// WithReferenceRecency sets the activity window used for the full bonus.
func WithReferenceRecency(days float64) Option {
	return func(r *Ranker) {
		r.ref = &days
	}
}

// WithTopN limits how many fighters a ranking returns. Zero or less keeps all.
func WithTopN(n int) Option {
	return func(r *Ranker) {
		r.topN = n
	}
}
