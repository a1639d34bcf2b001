package ixparams

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Params imgix parameter set, keyed by long or short parameter name.
// Values are string, integer and float numbers, bool, []string or []any.
type Params map[string]any

// Clone returns a shallow copy of the params
func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Has reports whether key is present with a non-nil value
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Get returns the string form of the value of key
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	return FormatValue(v), true
}

// Without returns a copy of the params with keys removed
func (p Params) Without(keys ...string) Params {
	c := p.Clone()
	for _, k := range keys {
		delete(c, k)
	}
	return c
}

// Keys returns param keys in sorted order
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge layers params from left to right. Later layers override earlier
// ones on key collision, nil values are skipped.
func Merge(layers ...Params) Params {
	var size int
	for _, l := range layers {
		size += len(l)
	}
	merged := make(Params, size)
	for _, l := range layers {
		for k, v := range l {
			if v == nil {
				continue
			}
			merged[k] = v
		}
	}
	return merged
}

// FormatValue converts a param value to its string form.
// Slices are joined by comma.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Values returns the elements of a param value, one per comma separated item
// for slices and a single element otherwise.
func Values(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = FormatValue(e)
		}
		return parts
	default:
		return []string{FormatValue(v)}
	}
}
