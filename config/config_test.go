package config

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/manifest"
	"github.com/cshum/imgixset/metrics/prometheusmetrics"
	"github.com/cshum/imgixset/storage/filestorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefault(t *testing.T) {
	srv := CreateServer(nil)
	assert.Equal(t, ":8000", srv.Addr)
	assert.Nil(t, srv.Metrics)
	assert.Empty(t, srv.SentryDsn)
	app := srv.App.(*api.API)

	assert.False(t, app.Debug)
	assert.Equal(t, time.Second*30, app.RequestTimeout)
	assert.Equal(t, "manifest.json", app.ManifestKey)
	assert.Empty(t, app.ManifestBaseDir)
	assert.Equal(t, int64(1<<20), app.ManifestMaxSize)
	assert.Empty(t, app.ManifestConcurrency)
	assert.Empty(t, app.CacheSize)
	assert.Empty(t, app.Storages)

	b := app.Builder
	assert.Empty(t, b.Defaults.Domain)
	assert.False(t, b.Defaults.DisableHTTPS)
	assert.False(t, b.Defaults.DisableLibraryParam)
	assert.False(t, b.Defaults.DisableSrcSet)
	assert.Nil(t, b.Signer)
	assert.Empty(t, b.Observers)
	assert.NotSame(t, imgixset.DefaultWarnings, b.Warnings)
	assert.Equal(t, "https://assets.imgix.net/image.jpg?ixlib=go-"+imgixset.Version+"&w=100",
		b.BuildURL("https://assets.imgix.net/image.jpg?w=100", nil))
}

func TestBasic(t *testing.T) {
	srv := CreateServer([]string{
		"-debug",
		"-port", "2345",
		"-server-address", "localhost",
		"-imgix-domain", "assets.imgix.net",
		"-imgix-use-https=false",
		"-imgix-secure-url-token", "FOO123bar",
		"-imgix-default-params", "auto=format,compress&q=60",
		"-imgix-disable-library-param",
		"-imgix-disable-path-encoding",
		"-imgix-disable-quality-by-dpr",
		"-imgix-disable-srcset",
		"-cache-size", "100",
		"-request-timeout", "16s",
		"-manifest-key", "site/images.json",
		"-manifest-base-dir", "./images",
		"-manifest-max-size", "1024",
		"-manifest-concurrency", "3",
	})
	app := srv.App.(*api.API)

	assert.Equal(t, 2345, srv.Port)
	assert.Equal(t, "localhost:2345", srv.Addr)
	assert.True(t, srv.Debug)
	assert.True(t, app.Debug)
	assert.Equal(t, 100, app.CacheSize)
	assert.Equal(t, time.Second*16, app.RequestTimeout)
	assert.Equal(t, "site/images.json", app.ManifestKey)
	assert.Equal(t, "./images", app.ManifestBaseDir)
	assert.Equal(t, int64(1024), app.ManifestMaxSize)
	assert.Equal(t, 3, app.ManifestConcurrency)

	b := app.Builder
	assert.True(t, b.Debug)
	assert.Equal(t, "assets.imgix.net", b.Defaults.Domain)
	assert.True(t, b.Defaults.DisableHTTPS)
	assert.True(t, b.Defaults.DisableLibraryParam)
	assert.True(t, b.Defaults.DisablePathEncoding)
	assert.True(t, b.Defaults.DisableQualityByDPR)
	assert.True(t, b.Defaults.DisableSrcSet)
	q, _ := b.Defaults.ImgixParams.Get("q")
	assert.Equal(t, "60", q)
	auto, _ := b.Defaults.ImgixParams.Get("auto")
	assert.Equal(t, "format,compress", auto)
	require.NotNil(t, b.Signer)

	res := b.Build(imgixset.Props{Src: "/image.jpg", Width: 100})
	assert.True(t, strings.HasPrefix(res.Src, "http://assets.imgix.net/image.jpg?"))
	assert.Contains(t, res.Src, "&s=")
	assert.Equal(t, res.Src, res.SrcSet)
}

func TestVersion(t *testing.T) {
	assert.Empty(t, CreateServer([]string{"-version"}))
}

func TestBind(t *testing.T) {
	srv := CreateServer([]string{
		"-debug",
		"-port", "2345",
		"-bind", ":4567",
	})
	assert.Equal(t, ":4567", srv.Addr)
}

func TestSentry(t *testing.T) {
	srv := CreateServer([]string{
		"-sentry-dsn", "https://12345@sentry.com/123",
	})
	assert.Equal(t, "https://12345@sentry.com/123", srv.SentryDsn)
}

func TestPrometheusBind(t *testing.T) {
	srv := CreateServer([]string{
		"-bind", ":2345",
		"-prometheus-bind", ":6789",
		"-prometheus-path", "/myprom",
	})
	assert.Equal(t, ":2345", srv.Addr)
	pm := srv.Metrics.(*prometheusmetrics.PrometheusMetrics)
	assert.Equal(t, "/myprom", pm.Path)
	assert.Equal(t, ":6789", pm.Addr)
	app := srv.App.(*api.API)
	assert.Contains(t, app.Builder.Observers, imgixset.Observer(pm))
	require.Len(t, app.Storages, 0)

	srv = CreateServer([]string{
		"-prometheus-bind", ":6789",
		"-file-manifest-base-dir", t.TempDir(),
	})
	app = srv.App.(*api.API)
	require.Len(t, app.Storages, 1)
	_, ok := app.Storages[0].(*filestorage.FileStorage)
	assert.False(t, ok)
}

func TestFileStorage(t *testing.T) {
	srv := CreateServer([]string{
		"-file-safe-chars", "!",

		"-file-manifest-base-dir", "./foo",
		"-file-manifest-path-prefix", "abcd",
		"-file-manifest-mkdir-permission", "0700",
		"-file-manifest-write-permission", "0600",
		"-file-manifest-save-err-if-exists",
		"-file-manifest-expiration", "24h",
	})
	app := srv.App.(*api.API)
	require.Len(t, app.Storages, 1)
	storage := app.Storages[0].(*filestorage.FileStorage)
	assert.Equal(t, "./foo", storage.BaseDir)
	assert.Equal(t, "/abcd/", storage.PathPrefix)
	assert.Equal(t, "!", storage.SafeChars)
	assert.Equal(t, os.FileMode(0700), storage.MkdirPermission)
	assert.Equal(t, os.FileMode(0600), storage.WritePermission)
	assert.True(t, storage.SaveErrIfExists)
	assert.Equal(t, time.Hour*24, storage.Expiration)
}

func TestProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domain: profile.imgix.net
imgixParams:
  fit: max
disableLibraryParam: true
`), 0644))

	srv := CreateServer([]string{
		"-imgix-profile", path,
		"-imgix-domain", "flag.imgix.net",
		"-imgix-default-params", "q=60",
	})
	b := srv.App.(*api.API).Builder
	assert.Equal(t, "profile.imgix.net", b.Defaults.Domain)
	assert.True(t, b.Defaults.DisableLibraryParam)

	res := b.Build(imgixset.Props{Src: "image.jpg", Width: 100, Height: 50})
	assert.Equal(t, "https://profile.imgix.net/image.jpg?auto=format&fit=max&w=100&h=50&q=60", res.Src)

	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDisableWarnings(t *testing.T) {
	srv := CreateServer([]string{
		"-imgix-disable-warnings", "sizesAttribute,fallbackImage,unknown",
	})
	b := srv.App.(*api.API).Builder
	assert.False(t, b.Warnings.Enabled(imgixset.SizesAttribute))
	assert.False(t, b.Warnings.Enabled(imgixset.FallbackImage))
	assert.True(t, b.Warnings.Enabled(imgixset.InvalidARFormat))
	assert.True(t, imgixset.DefaultWarnings.Enabled(imgixset.SizesAttribute))
}

func TestApplyFuncs(t *testing.T) {
	fs := flag.NewFlagSet("imgixset", flag.ExitOnError)
	nopLogger := zap.NewNop()
	var seq []int
	options, logger, isDebug := applyFuncs(fs, func() (*zap.Logger, bool) {
		seq = append(seq, 4)
		return nopLogger, true
	}, func(fs *flag.FlagSet, cb Callback) api.Option {
		seq = append(seq, 3)
		logger, isDebug := cb()
		assert.Equal(t, nopLogger, logger)
		assert.True(t, isDebug)
		seq = append(seq, 5)
		return func(app *api.API) {
			seq = append(seq, 8)
		}
	}, nil, func(fs *flag.FlagSet, cb Callback) api.Option {
		seq = append(seq, 2)
		logger, isDebug := cb()
		assert.Equal(t, nopLogger, logger)
		assert.True(t, isDebug)
		seq = append(seq, 6)
		return func(app *api.API) {
			seq = append(seq, 9)
		}
	}, func(fs *flag.FlagSet, cb Callback) api.Option {
		seq = append(seq, 1)
		logger, isDebug := cb()
		assert.Equal(t, nopLogger, logger)
		assert.True(t, isDebug)
		seq = append(seq, 7)
		return func(app *api.API) {
			seq = append(seq, 10)
		}
	})
	assert.Equal(t, nopLogger, logger)
	assert.True(t, isDebug)
	api.New(nil, options...)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seq)
}

func writeManifest(t *testing.T, dir string) string {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), buf.Bytes(), 0644))

	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
defaults:
  domain: assets.imgix.net
images:
  - name: photo
    src: /photo.png
    file: photo.png
`), 0644))
	return path
}

func TestBuildManifest(t *testing.T) {
	ctx := context.Background()
	path := writeManifest(t, t.TempDir())
	storage := filestorage.New(t.TempDir())
	app := api.New(
		imgixset.New(imgixset.WithDisableLibraryParam(true)),
		api.WithStorages(storage),
		api.WithManifestKey("site/manifest.json"),
	)

	buf := &bytes.Buffer{}
	require.NoError(t, BuildManifest(ctx, app, path, buf))
	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Len(t, m.Images, 1)
	assert.Equal(t, 40, m.Images[0].Intrinsic.Width)
	assert.Equal(t, 30, m.Images[0].Intrinsic.Height)
	assert.Equal(t, "https://assets.imgix.net/photo.png?ar=4%3A3&auto=format&fit=crop", m.Images[0].Elements[0].Src)
	assert.NotContains(t, buf.String(), `\u0026`)

	_, err := storage.Stat(ctx, "site/manifest.json")
	assert.NoError(t, err)
	_, err = storage.Stat(ctx, "site/manifest.html")
	assert.NoError(t, err)

	err = BuildManifest(ctx, app, filepath.Join(t.TempDir(), "missing.yaml"), buf)
	assert.ErrorIs(t, err, imgixset.ErrNotFound)
}

func TestManifestFlag(t *testing.T) {
	path := writeManifest(t, t.TempDir())
	out := t.TempDir()
	assert.Nil(t, CreateServer([]string{
		"-manifest", path,
		"-file-manifest-base-dir", out,
	}))
	_, err := os.Stat(filepath.Join(out, "manifest.json"))
	assert.NoError(t, err)
}
