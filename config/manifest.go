package config

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/manifest"
	"go.uber.org/zap"
)

// BuildManifest builds manifest file of path through the app builder,
// publishes to the app storages if any, then writes the manifest JSON to w.
// Image files are read within the manifest directory unless app has a manifest base dir.
func BuildManifest(ctx context.Context, app *api.API, path string, w io.Writer) error {
	f, err := manifest.LoadFile(path)
	if err != nil {
		return err
	}
	baseDir := app.ManifestBaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}
	m, err := manifest.Build(ctx, app.Builder, f,
		manifest.WithConcurrency(app.ManifestConcurrency),
		manifest.WithBaseDir(baseDir),
		manifest.WithLogger(app.Logger))
	if err != nil {
		return err
	}
	if len(app.Storages) > 0 {
		if err = manifest.Publish(ctx, m, app.ManifestKey, app.Storages...); err != nil {
			return err
		}
		app.Logger.Info("manifest-publish",
			zap.String("key", app.ManifestKey),
			zap.Int("images", len(m.Images)),
			zap.Int("storages", len(app.Storages)))
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
