package prometheusmetrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cshum/imgixset/srcset"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusMetrics metrics server exposing build, warning,
// request and storage duration metrics, observing imgixset.Builder
type PrometheusMetrics struct {
	http.Server

	Host   string
	Port   int
	Path   string
	Logger *zap.Logger

	Registry        *prometheus.Registry
	BuildTotal      *prometheus.CounterVec
	WarningTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StorageDuration *prometheus.HistogramVec
}

// New create new metrics server
func New(options ...Option) *PrometheusMetrics {
	s := &PrometheusMetrics{
		Port:     9000,
		Path:     "/metrics",
		Logger:   zap.NewNop(),
		Registry: prometheus.NewRegistry(),
		BuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imgixset_build_total",
			Help: "Total number of src and srcset builds by rendering mode",
		}, []string{"mode"}),
		WarningTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imgixset_warning_total",
			Help: "Total number of emitted warnings by kind",
		}, []string{"warning"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imgixset_http_request_duration_seconds",
			Help:    "A histogram of latencies for requests",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"code", "method"}),
		StorageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imgixset_storage_operation_duration_seconds",
			Help:    "A histogram of latencies for storage operations",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"storage", "operation", "status"}),
	}
	for _, option := range options {
		option(s)
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.BuildTotal,
		s.WarningTotal,
		s.RequestDuration,
		s.StorageDuration,
	)
	if s.Addr == "" {
		s.Addr = s.Host + ":" + strconv.Itoa(s.Port)
	}

	mux := http.NewServeMux()
	mux.Handle(s.Path, promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	if s.Path != "/" {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, s.Path, http.StatusPermanentRedirect)
		})
	}
	s.Handler = mux
	return s
}

// Startup prometheus metrics server
func (s *PrometheusMetrics) Startup(_ context.Context) error {
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("prometheus listen", zap.Error(err))
		}
	}()
	s.Logger.Info("prometheus listen", zap.String("addr", s.Addr), zap.String("path", s.Path))
	return nil
}

// Shutdown prometheus metrics server
func (s *PrometheusMetrics) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

// Handle prometheus http request duration middleware
func (s *PrometheusMetrics) Handle(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(s.RequestDuration, next)
}

// ObserveBuild implements imgixset.Observer
func (s *PrometheusMetrics) ObserveBuild(mode srcset.Mode) {
	s.BuildTotal.WithLabelValues(mode.String()).Inc()
}

// ObserveWarning implements imgixset.Observer
func (s *PrometheusMetrics) ObserveWarning(name string) {
	s.WarningTotal.WithLabelValues(name).Inc()
}

// Option PrometheusMetrics option
type Option func(s *PrometheusMetrics)

// WithAddr with address and port option, overrides host and port
func WithAddr(addr string) Option {
	return func(s *PrometheusMetrics) {
		s.Addr = addr
	}
}

// WithHost with server address option
func WithHost(address string) Option {
	return func(s *PrometheusMetrics) {
		s.Host = address
	}
}

// WithPort with port option
func WithPort(port int) Option {
	return func(s *PrometheusMetrics) {
		s.Port = port
	}
}

// WithPath with path option
func WithPath(path string) Option {
	return func(s *PrometheusMetrics) {
		if path != "" {
			s.Path = path
		}
	}
}

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(s *PrometheusMetrics) {
		if logger != nil {
			s.Logger = logger
		}
	}
}
