package api

import (
	"time"

	"github.com/cshum/imgixset"
	"go.uber.org/zap"
)

// Option API option
type Option func(a *API)

// WithStorages with manifest publishing storages option
func WithStorages(storages ...imgixset.Storage) Option {
	return func(a *API) {
		for _, s := range storages {
			if s != nil {
				a.Storages = append(a.Storages, s)
			}
		}
	}
}

// WithManifestKey with default storage key of published manifest
func WithManifestKey(key string) Option {
	return func(a *API) {
		if key != "" {
			a.ManifestKey = key
		}
	}
}

// WithManifestBaseDir with base dir of image files probed for intrinsic size.
// Probing is disabled when empty.
func WithManifestBaseDir(dir string) Option {
	return func(a *API) {
		a.ManifestBaseDir = dir
	}
}

// WithManifestMaxSize with maximum manifest request body size
func WithManifestMaxSize(size int64) Option {
	return func(a *API) {
		if size > 0 {
			a.ManifestMaxSize = size
		}
	}
}

// WithManifestConcurrency with maximum manifest images built concurrently
func WithManifestConcurrency(n int) Option {
	return func(a *API) {
		a.ManifestConcurrency = n
	}
}

// WithCacheSize with LRU cache size of built srcset, 0 disables caching
func WithCacheSize(size int) Option {
	return func(a *API) {
		if size >= 0 {
			a.CacheSize = size
		}
	}
}

// WithRequestTimeout with manifest request timeout option
func WithRequestTimeout(timeout time.Duration) Option {
	return func(a *API) {
		if timeout > 0 {
			a.RequestTimeout = timeout
		}
	}
}

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.Logger = logger
		}
	}
}

// WithDebug with debug option
func WithDebug(debug bool) Option {
	return func(a *API) {
		a.Debug = debug
	}
}
