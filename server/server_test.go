package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testApp struct {
	StartupCnt  int
	ShutdownCnt int
}

func (app *testApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" && r.URL.Path != "/test" && !strings.HasPrefix(r.URL.Path, "/srcset") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func (app *testApp) Startup(context.Context) error {
	app.StartupCnt++
	return nil
}

func (app *testApp) Shutdown(context.Context) error {
	app.ShutdownCnt++
	return nil
}

type testMetrics struct {
	StartupCnt  int
	ShutdownCnt int
	HandleCnt   int
}

func (m *testMetrics) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HandleCnt++
		next.ServeHTTP(w, r)
	})
}

func (m *testMetrics) Startup(context.Context) error {
	m.StartupCnt++
	return nil
}

func (m *testMetrics) Shutdown(context.Context) error {
	m.ShutdownCnt++
	return nil
}

func boomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Foo", "Bar")
		if strings.Contains(r.URL.String(), "boom") {
			panic("booooom")
		}
		next.ServeHTTP(w, r)
	})
}

func TestServer_Run(t *testing.T) {
	ctx, done := context.WithCancel(context.Background())
	app := &testApp{}
	metrics := &testMetrics{}
	s := New(app,
		WithDebug(true),
		WithAddr(":0"),
		WithStartupTimeout(time.Millisecond),
		WithShutdownTimeout(time.Millisecond),
		WithMetrics(metrics),
		WithLogger(zap.NewExample()))
	go func() {
		time.Sleep(time.Millisecond * 10)
		done()
	}()
	s.RunContext(ctx)
	assert.Equal(t, 1, app.StartupCnt)
	assert.Equal(t, 1, app.ShutdownCnt)
	assert.Equal(t, 1, metrics.StartupCnt)
	assert.Equal(t, 1, metrics.ShutdownCnt)
}

func TestServer(t *testing.T) {
	s := New(&testApp{},
		WithAccessLog(true),
		WithMiddleware(boomMiddleware),
		WithCORS(true),
	)

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/favicon.ico", nil))
	assert.Equal(t, 200, w.Code)
	assert.NotEmpty(t, w.Header().Get("Vary"))
	assert.Equal(t, "Bar", w.Header().Get("X-Foo"))

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "https://example.com/favicon.ico", nil))
	assert.Equal(t, 405, w.Code)

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/healthcheck", nil))
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "Bar", w.Header().Get("X-Foo"))

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/health", nil))
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var stats HealthStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.NumberOfCPUs)

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/srcset?src=a.jpg", nil))
	assert.Equal(t, 200, w.Code)
	assert.NotEmpty(t, w.Header().Get("Vary"))
	assert.Equal(t, "Bar", w.Header().Get("X-Foo"))

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/srcset?boom", nil))
	assert.Equal(t, 500, w.Code)
	assert.NotEmpty(t, w.Header().Get("Vary"))
	assert.Equal(t, "Bar", w.Header().Get("X-Foo"))
	assert.Equal(t, `{"message":"booooom","status":500}`, w.Body.String())
}

func TestServerErrorLog(t *testing.T) {
	expectLogged := []string{"panic", "server", "server"}
	var logged []string
	logger := zap.NewExample(zap.Hooks(func(entry zapcore.Entry) error {
		logged = append(logged, entry.Message)
		return nil
	}))
	s := New(&testApp{},
		WithAccessLog(true),
		WithDebug(true),
		WithLogger(logger),
		WithMiddleware(boomMiddleware),
		WithCORS(true),
	)

	ts := httptest.NewServer(s.Handler)
	ts.Config = &s.Server
	defer ts.Close()

	w, err := http.Get(ts.URL + "/srcset?boom")
	require.NoError(t, err)
	assert.Equal(t, 500, w.StatusCode)
	assert.Equal(t, "Bar", w.Header.Get("X-Foo"))
	resp, err := io.ReadAll(w.Body)
	assert.NoError(t, err)
	assert.Equal(t, `{"message":"booooom","status":500}`, string(resp))

	_, err = ts.Config.ErrorLog.Writer().Write([]byte("http: TLS handshake error from 172.16.0.3:42672: EOF"))
	assert.NoError(t, err)
	_, err = ts.Config.ErrorLog.Writer().Write([]byte("foobar"))
	assert.NoError(t, err)

	assert.Equal(t, expectLogged, logged)
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(&testApp{}, WithLogger(zap.New(core)), WithAccessLog(true))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/nope?a=1", nil)
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	s.Handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/healthcheck", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("access").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/nope?a=1", fields["uri"])
	assert.Equal(t, "198.51.100.7", fields["ip"])
}

func TestWithAddr(t *testing.T) {
	s := New(&testApp{}, WithAddr("https://example.com:1667"), WithPort(1234))
	assert.Equal(t, "https://example.com:1667", s.Addr)

	s = New(&testApp{}, WithAddress("https://foo.com"), WithPort(1234))
	assert.Equal(t, "https://foo.com:1234", s.Addr)

	s = New(&testApp{})
	assert.Equal(t, ":8000", s.Addr)
}

func TestWithPathPrefix(t *testing.T) {
	s := New(&testApp{})

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	s = New(&testApp{}, WithPathPrefix("/imgixset"))

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/imgixset/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithSentry(t *testing.T) {
	s := New(&testApp{}, WithSentry("https://12345@sentry.com/123"))
	assert.Equal(t, "https://12345@sentry.com/123", s.SentryDsn)
}

func TestWithAPI(t *testing.T) {
	app := api.New(imgixset.New(
		imgixset.WithDomain("assets.imgix.net"),
		imgixset.WithDisableLibraryParam(true),
	))
	s := New(app, WithPathPrefix("/v1"))

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"https://example.com/v1/url?src=image.jpg&w=450&h=100", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"url":"https://assets.imgix.net/image.jpg?w=450&h=100"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "https://example.com/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `{"message":"not found","status":404}`, w.Body.String())
}

func TestIsNil(t *testing.T) {
	t.Run("nil interface", func(t *testing.T) {
		var i any
		assert.True(t, isNil(i))
	})

	t.Run("nil pointer", func(t *testing.T) {
		var p *testApp
		assert.True(t, isNil(p))
	})

	t.Run("nil slice map channel function", func(t *testing.T) {
		var s []string
		var m map[string]string
		var c chan string
		var f func()
		assert.False(t, isNil(s))
		assert.False(t, isNil(m))
		assert.False(t, isNil(c))
		assert.False(t, isNil(f))
	})

	t.Run("non-nil values", func(t *testing.T) {
		assert.False(t, isNil("string"))
		assert.False(t, isNil(42))
		assert.False(t, isNil(&testApp{}))
	})

	t.Run("interface holding nil pointer", func(t *testing.T) {
		var m *testMetrics
		var metrics Metrics = m
		assert.True(t, isNil(metrics))
	})
}

func TestServerStartupShutdown(t *testing.T) {
	app := &testApp{}
	metrics := &testMetrics{}
	s := New(app, WithMetrics(metrics), WithStartupTimeout(time.Second), WithShutdownTimeout(time.Second))

	s.startup(context.Background())
	assert.Equal(t, 1, app.StartupCnt)
	assert.Equal(t, 1, metrics.StartupCnt)

	s.shutdown(context.Background())
	assert.Equal(t, 1, app.ShutdownCnt)
	assert.Equal(t, 1, metrics.ShutdownCnt)
}

func TestServerOptions(t *testing.T) {
	app := &testApp{}

	t.Run("WithAddress and WithPort", func(t *testing.T) {
		s := New(app, WithAddress("localhost"), WithPort(9090))
		assert.Equal(t, "localhost", s.Address)
		assert.Equal(t, 9090, s.Port)
		assert.Equal(t, "localhost:9090", s.Addr)
	})

	t.Run("WithCertFile and WithKeyFile", func(t *testing.T) {
		s := New(app, WithCertFile("cert.pem"), WithKeyFile("key.pem"))
		assert.Equal(t, "cert.pem", s.CertFile)
		assert.Equal(t, "key.pem", s.KeyFile)
	})

	t.Run("WithLogger", func(t *testing.T) {
		logger := zap.NewExample()
		assert.Equal(t, logger, New(app, WithLogger(logger)).Logger)
		assert.NotNil(t, New(app, WithLogger(nil)).Logger)
	})

	t.Run("WithDebug", func(t *testing.T) {
		assert.True(t, New(app, WithDebug(true)).Debug)
	})

	t.Run("timeouts", func(t *testing.T) {
		s := New(app, WithStartupTimeout(5*time.Second), WithShutdownTimeout(15*time.Second))
		assert.Equal(t, 5*time.Second, s.StartupTimeout)
		assert.Equal(t, 15*time.Second, s.ShutdownTimeout)

		s = New(app, WithStartupTimeout(0), WithShutdownTimeout(0))
		assert.Equal(t, time.Second*10, s.StartupTimeout)
		assert.Equal(t, time.Second*10, s.ShutdownTimeout)
	})

	t.Run("WithMiddleware", func(t *testing.T) {
		s := New(app, WithMiddleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Test", "middleware")
				next.ServeHTTP(w, r)
			})
		}))
		w := httptest.NewRecorder()
		s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "middleware", w.Header().Get("X-Test"))

		assert.NotNil(t, New(app, WithMiddleware(nil)).Handler)
	})

	t.Run("WithMetrics", func(t *testing.T) {
		metrics := &testMetrics{}
		s := New(app, WithMetrics(metrics))
		assert.Equal(t, metrics, s.Metrics)

		w := httptest.NewRecorder()
		s.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, 1, metrics.HandleCnt)

		assert.True(t, isNil(New(app, WithMetrics(nil)).Metrics))
	})
}

func TestServerErrorLogWriter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	writer := &serverErrorLogWriter{Logger: zap.New(core)}

	tests := []struct {
		msg   string
		level zapcore.Level
	}{
		{"http: TLS handshake error from 172.16.0.3:42672: EOF\n", zapcore.DebugLevel},
		{"http: URL query contains semicolon, which is deprecated\n", zapcore.DebugLevel},
		{"some other server error\n", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			logs.TakeAll()
			n, err := writer.Write([]byte(tt.msg))
			assert.NoError(t, err)
			assert.Equal(t, len(tt.msg), n)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, "server", entries[0].Message)
			assert.Equal(t, tt.level, entries[0].Level)
		})
	}
}

func TestHandlerFunctions(t *testing.T) {
	assert.True(t, isNoopRequest(httptest.NewRequest(http.MethodGet, "/healthcheck", nil)))
	assert.True(t, isNoopRequest(httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)))
	assert.False(t, isNoopRequest(httptest.NewRequest(http.MethodGet, "/srcset", nil)))
	assert.False(t, isNoopRequest(httptest.NewRequest(http.MethodPost, "/healthcheck", nil)))

	w := httptest.NewRecorder()
	handleOk(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPanicHandler(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(&testApp{}, WithLogger(zap.New(core)))

	tests := []struct {
		name  string
		panic any
	}{
		{"panic with error", fmt.Errorf("test error")},
		{"panic with string", "string panic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			handler := s.panicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.panic)
			}))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprint(tt.panic))
			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, "panic", entries[0].Message)
		})
	}

	t.Run("no panic", func(t *testing.T) {
		logs.TakeAll()
		handler := s.panicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("success"))
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", w.Body.String())
		assert.Empty(t, logs.All())
	})
}
