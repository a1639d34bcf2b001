package imgixset

import (
	"github.com/cshum/imgixset/ixparams"
	"github.com/cshum/imgixset/ixurl"
	"go.uber.org/zap"
)

// Option Builder option
type Option func(b *Builder)

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.Logger = logger
		}
	}
}

// WithDebug with debug option
func WithDebug(debug bool) Option {
	return func(b *Builder) {
		b.Debug = debug
	}
}

// WithDefaults with provider default props option, merged under props of every build
func WithDefaults(defaults Props) Option {
	return func(b *Builder) {
		b.Defaults = MergeProps(b.Defaults, defaults)
	}
}

// WithDomain with default imgix domain option
func WithDomain(domain string) Option {
	return func(b *Builder) {
		b.Defaults.Domain = domain
	}
}

// WithDefaultParams with default imgix params option
func WithDefaultParams(params ixparams.Params) Option {
	return func(b *Builder) {
		b.Defaults.ImgixParams = ixparams.Merge(b.Defaults.ImgixParams, params)
	}
}

// WithSigner with secure URL signer option
func WithSigner(signer ixurl.Signer) Option {
	return func(b *Builder) {
		b.Signer = signer
	}
}

// WithSecureURLToken with imgix secure URL token option
func WithSecureURLToken(token string) Option {
	return func(b *Builder) {
		if token != "" {
			b.Signer = ixurl.NewMD5Signer(token)
		}
	}
}

// WithUseHTTPS with https scheme option, default true
func WithUseHTTPS(https bool) Option {
	return func(b *Builder) {
		b.Defaults.DisableHTTPS = !https
	}
}

// WithDisableLibraryParam with disable ixlib param option
func WithDisableLibraryParam(disable bool) Option {
	return func(b *Builder) {
		b.Defaults.DisableLibraryParam = disable
	}
}

// WithDisablePathEncoding with disable path encoding option
func WithDisablePathEncoding(disable bool) Option {
	return func(b *Builder) {
		b.Defaults.DisablePathEncoding = disable
	}
}

// WithDisableQualityByDPR with disable quality by DPR option
func WithDisableQualityByDPR(disable bool) Option {
	return func(b *Builder) {
		b.Defaults.DisableQualityByDPR = disable
	}
}

// WithDisableSrcSet with disable srcset option
func WithDisableSrcSet(disable bool) Option {
	return func(b *Builder) {
		b.Defaults.DisableSrcSet = disable
	}
}

// WithWarnings with warning toggles option, DefaultWarnings if unset
func WithWarnings(warnings *Warnings) Option {
	return func(b *Builder) {
		if warnings != nil {
			b.Warnings = warnings
		}
	}
}

// WithDisableWarnings with disabled warning names option
func WithDisableWarnings(names ...string) Option {
	return func(b *Builder) {
		if b.Warnings == DefaultWarnings {
			b.Warnings = NewWarnings()
		}
		b.Warnings.Disable(names...)
	}
}

// WithObservers with build observers option
func WithObservers(observers ...Observer) Option {
	return func(b *Builder) {
		for _, o := range observers {
			if o != nil {
				b.Observers = append(b.Observers, o)
			}
		}
	}
}
