package fabrica

// genConfig collects the per-call generation knobs shared by Has and the
// batch operations.
type genConfig struct {
	count     int
	sequence  []any
	overrides Fields
}

// Option configures a Has call or a batch operation.
type Option func(*genConfig)

func newGenConfig(opts []Option) genConfig {
	cfg := genConfig{count: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithCount sets how many related records a Has call queues. Batch
// operations take their size as an argument and ignore it.
func WithCount(n int) Option {
	return func(c *genConfig) {
		c.count = n
	}
}

// WithSequence supplies per-item override mappings, cycled to the
// requested count: a shorter sequence repeats from the start, a longer one
// is truncated. Items are untyped because sequences commonly come from
// YAML fixture files (see the fixtures package); each item must be a field
// mapping or the call fails with a SequenceTypeError.
func WithSequence(items ...any) Option {
	return func(c *genConfig) {
		c.sequence = items
	}
}

// WithOverrides supplies flat overrides merged into every item; they win
// over sequence values on conflicting keys.
func WithOverrides(overrides Fields) Option {
	return func(c *genConfig) {
		c.overrides = overrides
	}
}
