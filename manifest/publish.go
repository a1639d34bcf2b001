package manifest

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html"
	"path"
	"slices"
	"strings"
	"sync"
	"text/template"

	"github.com/cshum/imgixset"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/manifest.html
var templatesFS embed.FS

var htmlTemplate = template.Must(template.New("manifest.html").
	Funcs(template.FuncMap{"attrs": attrs}).
	ParseFS(templatesFS, "templates/manifest.html"))

type attr struct {
	Name  string
	Value string
}

// attrs sorts attributes by name with escaped values
func attrs(m map[string]string) []attr {
	res := make([]attr, 0, len(m))
	for k, v := range m {
		res = append(res, attr{Name: html.EscapeString(k), Value: html.EscapeString(v)})
	}
	slices.SortFunc(res, func(a, b attr) int {
		return strings.Compare(a.Name, b.Name)
	})
	return res
}

// HTML renders img and picture markup of built images
func (m *Manifest) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, m); err != nil {
		return nil, err
	}
	return bytes.TrimLeft(buf.Bytes(), "\n"), nil
}

// HTMLKey returns the key of HTML markup published next to the JSON key
func HTMLKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ".html"
}

// Publish puts manifest JSON under key and its HTML markup under HTMLKey(key)
// to every storage. Failed puts do not stop the others, their errors are combined.
func Publish(ctx context.Context, m *Manifest, key string, storages ...imgixset.Storage) error {
	markup, err := m.HTML()
	if err != nil {
		return err
	}
	blobs := map[string]*imgixset.Blob{
		key:         imgixset.NewBlobFromJSON(m),
		HTMLKey(key): imgixset.NewBlobFromBytes(markup),
	}
	var mu sync.Mutex
	var errs error
	var g errgroup.Group
	for _, storage := range storages {
		for k, blob := range blobs {
			g.Go(func() error {
				if err := storage.Put(ctx, k, blob); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	return errs
}

// Delete removes manifest JSON under key and its HTML markup from every storage.
// Keys missing from a storage are skipped, ErrNotFound is returned only when
// no storage held either key.
func Delete(ctx context.Context, key string, storages ...imgixset.Storage) error {
	var mu sync.Mutex
	var errs error
	var deleted bool
	var g errgroup.Group
	for _, storage := range storages {
		for _, k := range []string{key, HTMLKey(key)} {
			g.Go(func() error {
				err := storage.Delete(ctx, k)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					deleted = true
				case !errors.Is(err, imgixset.ErrNotFound):
					errs = multierr.Append(errs, err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
	if errs == nil && !deleted {
		return imgixset.ErrNotFound
	}
	return errs
}
