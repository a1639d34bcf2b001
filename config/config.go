package config

import (
	"flag"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/cshum/imgixset/api"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Callback parses flags once and returns the logger and debug mode
type Callback func() (logger *zap.Logger, isDebug bool)

// Func registers flags to the flag set, returning api.Option of the parsed values
type Func func(fs *flag.FlagSet, cb Callback) api.Option

// applyFuncs registers flags of funcs from the last to the first,
// parsing only once every func has registered its flags
func applyFuncs(
	fs *flag.FlagSet, cb Callback, funcs ...Func,
) (options []api.Option, logger *zap.Logger, isDebug bool) {
	if len(funcs) == 0 {
		logger, isDebug = cb()
		return
	}
	var last = len(funcs) - 1
	var called bool
	if funcs[last] == nil {
		return applyFuncs(fs, cb, funcs[:last]...)
	}
	options = append(options, funcs[last](fs, func() (*zap.Logger, bool) {
		options, logger, isDebug = applyFuncs(fs, cb, funcs[:last]...)
		called = true
		return logger, isDebug
	}))
	if !called {
		var opts []api.Option
		opts, logger, isDebug = applyFuncs(fs, cb, funcs[:last]...)
		options = append(opts, options...)
	}
	return
}

// NewLogger creates production or development logger by debug mode.
// Error level entries are also sent to Sentry if dsn present.
func NewLogger(debug bool, sentryDsn string) (logger *zap.Logger, err error) {
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil || sentryDsn == "" {
		return
	}
	if err = sentry.Init(sentry.ClientOptions{Dsn: sentryDsn}); err != nil {
		return
	}
	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
	}, zapsentry.NewSentryClientFromClient(sentry.CurrentHub().Client()))
	if err != nil {
		return
	}
	return zapsentry.AttachCoreToLogger(core, logger), nil
}
