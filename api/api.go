// Package api serves imgix src and srcset building over a JSON HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/manifest"
	"github.com/cshum/imgixset/srcset"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// API imgixset JSON HTTP API
type API struct {
	Builder             *imgixset.Builder
	Storages            []imgixset.Storage
	ManifestKey         string
	ManifestBaseDir     string
	ManifestMaxSize     int64
	ManifestConcurrency int
	CacheSize           int
	RequestTimeout      time.Duration
	Logger              *zap.Logger
	Debug               bool

	cache *lru.Cache[string, manifest.Element]
}

// New create new API
func New(builder *imgixset.Builder, options ...Option) *API {
	a := &API{
		Builder:         builder,
		ManifestKey:     "manifest.json",
		ManifestMaxSize: 1 << 20,
		RequestTimeout:  time.Second * 30,
		Logger:          zap.NewNop(),
	}
	for _, option := range options {
		option(a)
	}
	if a.Builder == nil {
		a.Builder = imgixset.New(imgixset.WithLogger(a.Logger))
	}
	if a.CacheSize > 0 {
		a.cache, _ = lru.New[string, manifest.Element](a.CacheSize)
	}
	return a
}

// Startup implements server.Service
func (a *API) Startup(_ context.Context) error {
	if a.Debug {
		a.Logger.Debug("startup",
			zap.Int("storages", len(a.Storages)),
			zap.String("manifest_key", a.ManifestKey),
			zap.Int("cache_size", a.CacheSize))
	}
	return nil
}

// Shutdown implements server.Service
func (a *API) Shutdown(_ context.Context) error {
	if a.cache != nil {
		a.cache.Purge()
	}
	return nil
}

// ServeHTTP implements http.Handler
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "", "/":
		if !allowMethod(w, r, http.MethodGet, http.MethodHead) {
			return
		}
		resJSON(w, http.StatusOK, json.RawMessage(fmt.Sprintf(
			`{"imgixset":{"version":"%s"}}`, imgixset.Version)))
	case "/srcset":
		if allowMethod(w, r, http.MethodGet, http.MethodHead) {
			a.handleSrcSet(w, r)
		}
	case "/url":
		if allowMethod(w, r, http.MethodGet, http.MethodHead) {
			a.handleURL(w, r)
		}
	case "/background":
		if allowMethod(w, r, http.MethodGet, http.MethodHead) {
			a.handleBackground(w, r)
		}
	case "/manifest":
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			a.handleGetManifest(w, r)
		case http.MethodDelete:
			a.handleDeleteManifest(w, r)
		default:
			if allowMethod(w, r, http.MethodPost, http.MethodPut) {
				a.handleManifest(w, r)
			}
		}
	default:
		resError(w, imgixset.ErrNotFound)
	}
}

func (a *API) handleSrcSet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := "srcset?" + q.Encode()
	if a.cache != nil {
		if elem, ok := a.cache.Get(key); ok {
			if a.Debug {
				a.Logger.Debug("cache-hit", zap.String("key", key))
			}
			resJSON(w, http.StatusOK, elem)
			return
		}
	}
	p, err := parseProps(q)
	if err != nil {
		resError(w, err)
		return
	}
	res := a.Builder.Build(p)
	elem := manifest.Element{Result: res, Attributes: res.Attributes()}
	if a.cache != nil {
		a.cache.Add(key, elem)
	}
	resJSON(w, http.StatusOK, elem)
}

type urlResponse struct {
	URL string `json:"url"`
}

func (a *API) handleURL(w http.ResponseWriter, r *http.Request) {
	p, params, err := parseURLProps(r.URL.Query())
	if err != nil {
		resError(w, err)
		return
	}
	if p.Src == "" {
		resError(w, imgixset.NewError("missing src", http.StatusBadRequest))
		return
	}
	resJSON(w, http.StatusOK, urlResponse{URL: a.Builder.URL(p, params)})
}

func (a *API) handleBackground(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := parseProps(q, measureKeys...)
	if err != nil {
		resError(w, err)
		return
	}
	var m srcset.Measure
	if m.Width, err = parseFloat(q, "measured-width"); err != nil {
		resError(w, err)
		return
	}
	if m.Height, err = parseFloat(q, "measured-height"); err != nil {
		resError(w, err)
		return
	}
	if m.DPR, err = parseFloat(q, "dpr"); err != nil {
		resError(w, err)
		return
	}
	resJSON(w, http.StatusOK, urlResponse{URL: a.Builder.Background(p, m)})
}

func (a *API) handleManifest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.RequestTimeout)
	defer cancel()
	buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.ManifestMaxSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			err = imgixset.ErrMaxSizeExceeded
		}
		resError(w, err)
		return
	}
	f, err := manifest.Load(bytes.NewReader(buf))
	if err != nil {
		resError(w, combined(err))
		return
	}
	if a.ManifestBaseDir == "" {
		for _, e := range f.Images {
			if e.File != "" {
				resError(w, imgixset.NewError(
					fmt.Sprintf("image %q: file probing disabled", e.Name), http.StatusBadRequest))
				return
			}
		}
	}
	m, err := manifest.Build(ctx, a.Builder, f,
		manifest.WithConcurrency(a.ManifestConcurrency),
		manifest.WithBaseDir(a.ManifestBaseDir),
		manifest.WithLogger(a.Logger))
	if err != nil {
		resError(w, combined(err))
		return
	}
	if len(a.Storages) > 0 {
		key := a.manifestKey(r)
		if err := manifest.Publish(ctx, m, key, a.Storages...); err != nil {
			a.Logger.Warn("manifest-publish", zap.String("key", key), zap.Error(err))
			resError(w, combined(err))
			return
		}
		if a.Debug {
			a.Logger.Debug("manifest-publish", zap.String("key", key), zap.Int("images", len(m.Images)))
		}
	}
	resJSON(w, http.StatusOK, m)
}

// handleGetManifest serves a published manifest or its HTML markup
// from the first storage holding key. Storages rejecting key are skipped.
func (a *API) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.RequestTimeout)
	defer cancel()
	key := a.manifestKey(r)
	var err error = imgixset.ErrNotFound
	for _, storage := range a.Storages {
		var blob *imgixset.Blob
		blob, err = storage.Get(ctx, key)
		if errors.Is(err, imgixset.ErrNotFound) || errors.Is(err, imgixset.ErrInvalid) {
			continue
		}
		if err != nil {
			break
		}
		var buf []byte
		if buf, err = blob.ReadAll(); err != nil {
			break
		}
		if blob.IsEmpty() {
			err = imgixset.ErrNotFound
			continue
		}
		if stat, err := storage.Stat(ctx, key); err == nil {
			if !stat.ModifiedTime.IsZero() {
				w.Header().Set("Last-Modified", stat.ModifiedTime.UTC().Format(http.TimeFormat))
			}
			if stat.ETag != "" {
				w.Header().Set("ETag", stat.ETag)
			}
		}
		w.Header().Set("Content-Type", blob.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(buf)
		}
		return
	}
	if !errors.Is(err, imgixset.ErrNotFound) {
		a.Logger.Warn("manifest-get", zap.String("key", key), zap.Error(err))
	}
	resError(w, err)
}

type deleteResponse struct {
	Key string `json:"key"`
}

// handleDeleteManifest deletes a published manifest and its HTML markup
// from every storage
func (a *API) handleDeleteManifest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.RequestTimeout)
	defer cancel()
	key := a.manifestKey(r)
	if err := manifest.Delete(ctx, key, a.Storages...); err != nil {
		if !errors.Is(err, imgixset.ErrNotFound) {
			a.Logger.Warn("manifest-delete", zap.String("key", key), zap.Error(err))
		}
		resError(w, combined(err))
		return
	}
	if a.Debug {
		a.Logger.Debug("manifest-delete", zap.String("key", key))
	}
	resJSON(w, http.StatusOK, deleteResponse{Key: key})
}

func (a *API) manifestKey(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	return a.ManifestKey
}

// combined keeps the full message of wrapped or combined errors
// under the status of the first
func combined(err error) error {
	e := imgixset.WrapError(err)
	if msg := err.Error(); msg != e.Error() {
		return imgixset.NewError(msg, e.Code)
	}
	return e
}

func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	resError(w, imgixset.ErrMethodNotAllowed)
	return false
}

// resJSON writes v as JSON, URLs kept unescaped
func resJSON(w http.ResponseWriter, status int, v any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	body := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func resError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	e := imgixset.WrapError(err)
	resJSON(w, e.Code, e)
}
