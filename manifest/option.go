package manifest

import (
	"runtime"

	"go.uber.org/zap"
)

type options struct {
	Concurrency int
	BaseDir     string
	Logger      *zap.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{
		Concurrency: runtime.NumCPU(),
		BaseDir:     ".",
		Logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option manifest build and publish option
type Option func(o *options)

// WithConcurrency with maximum images built concurrently
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithBaseDir with base dir that image files are read within
func WithBaseDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.BaseDir = dir
		}
	}
}

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
