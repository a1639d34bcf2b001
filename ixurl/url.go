package ixurl

import (
	"encoding/base64"
	"slices"
	"strings"

	"github.com/cshum/imgixset/ixparams"
)

// Option URL build option
type Option func(o *options)

type options struct {
	HTTPS               bool
	DisablePathEncoding bool
	Signer              Signer
}

// WithHTTPS with https scheme option for paths without scheme, default true
func WithHTTPS(https bool) Option {
	return func(o *options) {
		o.HTTPS = https
	}
}

// WithDisablePathEncoding with disable path encoding option
func WithDisablePathEncoding(disable bool) Option {
	return func(o *options) {
		o.DisablePathEncoding = disable
	}
}

// WithSigner with secure URL signer option
func WithSigner(signer Signer) Option {
	return func(o *options) {
		o.Signer = signer
	}
}

// Build imgix URL from path, domain and params.
// Params override same named params embedded in the path query string.
// A path with scheme is fully qualified and domain is ignored.
// Empty path results in empty URL.
func Build(path, domain string, params ixparams.Params, opts ...Option) string {
	if path == "" {
		return ""
	}
	o := options{HTTPS: true}
	for _, opt := range opts {
		opt(&o)
	}
	path, embedded := ixparams.ExtractQuery(path)
	if len(embedded) > 0 {
		params = ixparams.Merge(embedded, params)
	}
	scheme, host, p := splitPath(path, domain, o.HTTPS)
	if !o.DisablePathEncoding {
		p = Escape(p, ShouldEscapePath)
	}
	query := EncodeQuery(params)
	if o.Signer != nil {
		sig := "s=" + o.Signer.Sign(p, query)
		if query != "" {
			query += "&" + sig
		} else {
			query = sig
		}
	}
	var b strings.Builder
	if host != "" {
		b.WriteString(scheme)
		b.WriteString("://")
		b.WriteString(host)
	}
	b.WriteString(p)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}

func splitPath(path, domain string, https bool) (scheme, host, p string) {
	if s, rest, ok := strings.Cut(path, "://"); ok {
		host, p, _ = strings.Cut(rest, "/")
		return s, host, "/" + p
	}
	scheme = "https"
	if !https {
		scheme = "http"
	}
	if s, rest, ok := strings.Cut(domain, "://"); ok {
		scheme, domain = s, rest
	}
	return scheme, strings.Trim(domain, "/"), "/" + strings.Trim(path, "/")
}

// trailingKeys size related keys serialized after all other keys, in this order
var trailingKeys = []string{"w", "h", "dpr", "q"}

// QueryKeys returns params keys in serialization order:
// sorted by name, with size related keys w, h, dpr and q last
func QueryKeys(params ixparams.Params) []string {
	keys := params.Keys()
	rank := func(k string) int {
		if i := slices.Index(trailingKeys, k); i >= 0 {
			return i + 1
		}
		return 0
	}
	slices.SortStableFunc(keys, func(a, b string) int {
		return rank(a) - rank(b)
	})
	return keys
}

// EncodeQuery serializes params as query string in QueryKeys order.
// Keys and values are percent-encoded, slice elements joined by comma,
// values of keys ending in "64" are URL-safe base64 encoded without padding.
func EncodeQuery(params ixparams.Params) string {
	var b strings.Builder
	for _, k := range QueryKeys(params) {
		v := params[k]
		if v == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(k, ShouldEscapeComponent))
		b.WriteByte('=')
		if strings.HasSuffix(k, "64") {
			b.WriteString(base64.RawURLEncoding.EncodeToString(
				[]byte(ixparams.FormatValue(v))))
			continue
		}
		for i, e := range ixparams.Values(v) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Escape(e, ShouldEscapeComponent))
		}
	}
	return b.String()
}

// FormatSrc joins a relative src with domain into a fully qualified URL.
// Empty src, src with scheme, or empty domain, returns src as is.
func FormatSrc(src, domain string, https bool) string {
	if src == "" || strings.Contains(src, "://") || domain == "" {
		return src
	}
	scheme := "https"
	if !https {
		scheme = "http"
	}
	if s, rest, ok := strings.Cut(domain, "://"); ok {
		scheme, domain = s, rest
	}
	return scheme + "://" + strings.Trim(domain, "/") + "/" + strings.Trim(src, "/")
}
