package ixparams

import (
	"net/url"
	"strings"
)

// ExtractQuery splits an image reference into path and query params.
// Values are percent-decoded, keys are kept as is.
// A pair without "=" results in an empty value.
func ExtractQuery(ref string) (string, Params) {
	path, query, ok := strings.Cut(ref, "?")
	params := Params{}
	if !ok || query == "" {
		return path, params
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, val, _ := strings.Cut(pair, "=")
		if decoded, err := url.PathUnescape(val); err == nil {
			val = decoded
		}
		params[key] = val
	}
	return path, params
}
