package streamquery

import "go.uber.org/zap"

// Option configures a Groups.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	capacity int
}

func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	mergeDefaultOptions(o)
	return o
}

func mergeDefaultOptions(o *options) {
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.capacity < 0 {
		o.capacity = 0
	}
}

// WithLogger sets the logger a Groups reports its progress to. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCapacity pre-sizes the key index of a Groups for the expected number of distinct keys.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}
