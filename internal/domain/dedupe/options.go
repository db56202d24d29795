package dedupe

// Option configures a deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered keys. The oldest key is
// forgotten first. Zero or less means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
