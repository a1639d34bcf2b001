package config

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/metrics/prometheusmetrics"
	"github.com/cshum/imgixset/server"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"
)

// CreateServer create server from parsed flags, env and config file.
// Returns nil when no server should run, such as -version or a one-shot -manifest build.
func CreateServer(args []string, funcs ...Func) (srv *server.Server) {
	var (
		fs     = flag.NewFlagSet("imgixset", flag.ExitOnError)
		logger *zap.Logger
		err    error
		app    *api.API

		debug        = fs.Bool("debug", false, "Debug mode")
		version      = fs.Bool("version", false, "imgixset version")
		port         = fs.Int("port", 8000, "Server port")
		goMaxProcess = fs.Int("gomaxprocs", 0, "GOMAXPROCS")
		bind         = fs.String("bind", "",
			"Server address and port to bind e.g. myhost:8888. This overrides server address and port config")

		_ = fs.String("config", ".env", "Retrieve configuration from the given file")

		manifestFile = fs.String("manifest", "",
			"Build the given manifest file once, publish to configured storages and print the result, instead of running server")

		serverAddress = fs.String("server-address", "",
			"Server address")
		serverPathPrefix = fs.String("server-path-prefix", "",
			"Server path prefix")
		serverCORS = fs.Bool("server-cors", false,
			"Enable CORS")
		serverAccessLog = fs.Bool("server-access-log", false,
			"Enable server access log")

		prometheusBind = fs.String("prometheus-bind", "",
			"Specify address and port to enable Prometheus metrics, e.g. :5000, prom:7000")
		prometheusPath = fs.String("prometheus-path", "/metrics",
			"Prometheus metrics path")

		sentryDsn = fs.String("sentry-dsn", "",
			"Sentry DSN to report errors to Sentry")
	)

	app = NewAPI(fs, func() (*zap.Logger, bool) {
		if err = ff.Parse(fs, args,
			ff.WithEnvVars(),
			ff.WithConfigFileFlag("config"),
			ff.WithIgnoreUndefined(true),
			ff.WithAllowMissingConfigFile(true),
			ff.WithConfigFileParser(ff.EnvParser),
		); err != nil {
			panic(err)
		}
		if logger, err = NewLogger(*debug, *sentryDsn); err != nil {
			panic(err)
		}
		return logger, *debug
	}, append(funcs, WithFile)...)

	if *version {
		fmt.Println(imgixset.Version)
		return
	}

	if *goMaxProcess > 0 {
		logger.Debug("GOMAXPROCS", zap.Int("count", *goMaxProcess))
		runtime.GOMAXPROCS(*goMaxProcess)
	}

	if *manifestFile != "" {
		if err = BuildManifest(context.Background(), app, *manifestFile, os.Stdout); err != nil {
			logger.Fatal("manifest", zap.String("file", *manifestFile), zap.Error(err))
		}
		return
	}

	var metrics *prometheusmetrics.PrometheusMetrics
	if *prometheusBind != "" {
		metrics = prometheusmetrics.New(
			prometheusmetrics.WithAddr(*prometheusBind),
			prometheusmetrics.WithPath(*prometheusPath),
			prometheusmetrics.WithLogger(logger),
		)
		app.Builder.Observers = append(app.Builder.Observers, metrics)
		for i, storage := range app.Storages {
			app.Storages[i] = metrics.InstrumentStorage(storage)
		}
	}

	return server.New(app,
		server.WithAddr(*bind),
		server.WithAddress(*serverAddress),
		server.WithPort(*port),
		server.WithPathPrefix(*serverPathPrefix),
		server.WithCORS(*serverCORS),
		server.WithAccessLog(*serverAccessLog),
		server.WithLogger(logger),
		server.WithDebug(*debug),
		server.WithMetrics(metrics),
		server.WithSentry(*sentryDsn),
	)
}
