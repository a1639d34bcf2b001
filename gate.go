package imgixset

import (
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/cshum/imgixset/ixparams"
)

// Gate reports whether props differ from the props of the previous call,
// so unchanged renders can reuse their previous result
type Gate struct {
	mu   sync.Mutex
	prev *Props
}

// Changed records p and reports whether it differs from the previous props.
// The first call always reports a change.
func (g *Gate) Changed(p Props) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	changed := g.prev == nil || !EqualProps(*g.prev, p)
	p = cloneProps(p)
	g.prev = &p
	return changed
}

// cloneProps copies the maps and slices of p, so later in place
// mutations by the caller are seen as changes
func cloneProps(p Props) Props {
	p.ImgixParams = cloneParams(p.ImgixParams)
	p.CustomParams = cloneParams(p.CustomParams)
	p.HTMLAttributes = maps.Clone(p.HTMLAttributes)
	p.Auto = slices.Clone(p.Auto)
	return p
}

func cloneParams(params ixparams.Params) ixparams.Params {
	if params == nil {
		return nil
	}
	cloned := make(ixparams.Params, len(params))
	for k, v := range params {
		switch t := v.(type) {
		case []string:
			v = slices.Clone(t)
		case []any:
			v = slices.Clone(t)
		}
		cloned[k] = v
	}
	return cloned
}

// Reset forgets the previous props
func (g *Gate) Reset() {
	g.mu.Lock()
	g.prev = nil
	g.mu.Unlock()
}

// EqualProps shallow compares props.
// ImgixParams compare per key, with slice values compared element wise.
func EqualProps(a, b Props) bool {
	if !equalParams(a.ImgixParams, b.ImgixParams) ||
		!equalParams(a.CustomParams, b.CustomParams) ||
		!maps.Equal(a.HTMLAttributes, b.HTMLAttributes) ||
		!slices.Equal(a.Auto, b.Auto) {
		return false
	}
	return a.Element == b.Element &&
		a.Src == b.Src &&
		a.Domain == b.Domain &&
		a.Width == b.Width &&
		a.Height == b.Height &&
		a.Sizes == b.Sizes &&
		a.AttributeConfig == b.AttributeConfig &&
		a.DisableSrcSet == b.DisableSrcSet &&
		a.DisableLibraryParam == b.DisableLibraryParam &&
		a.DisablePathEncoding == b.DisablePathEncoding &&
		a.DisableQualityByDPR == b.DisableQualityByDPR &&
		a.DisableHTTPS == b.DisableHTTPS &&
		a.InPicture == b.InPicture &&
		a.Crop == b.Crop &&
		a.Fit == b.Fit &&
		a.Faces == b.Faces &&
		a.Entropy == b.Entropy
}

func equalParams(a, b ixparams.Params) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !equalValue(va, vb) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	switch ta := a.(type) {
	case []string:
		tb, ok := b.([]string)
		return ok && slices.Equal(ta, tb)
	case []any:
		tb, ok := b.([]any)
		return ok && slices.EqualFunc(ta, tb, equalValue)
	}
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Memo builds props through a Builder, reusing the previous result
// while the normalized props are unchanged
type Memo struct {
	builder *Builder
	gate    Gate
	mu      sync.Mutex
	last    Result
}

// Build returns the result of p, rebuilt only when p changed
func (m *Memo) Build(p Props) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	normalized, _ := Normalize(MergeProps(m.builder.Defaults, p))
	if m.gate.Changed(normalized) {
		m.last = m.builder.Build(p)
	}
	return m.last
}
