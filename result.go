package imgixset

import (
	"maps"
	"strconv"

	"github.com/cshum/imgixset/srcset"
)

// Result rendered image attributes
type Result struct {
	Element  Element          `json:"element"`
	Mode     srcset.Mode      `json:"mode"`
	Src      string           `json:"src"`
	SrcSet   string           `json:"srcSet"`
	Sizes    string           `json:"sizes,omitempty"`
	Width    int              `json:"width,omitempty"`
	Height   int              `json:"height,omitempty"`
	Variants srcset.Variants  `json:"variants,omitempty"`
	Warnings []srcset.Warning `json:"warnings,omitempty"`

	disableSrcSet   bool
	htmlAttributes  map[string]string
	attributeConfig AttributeConfig
}

// Attributes returns the element attributes, HTMLAttributes overridden by
// sizes, width, height, src and srcset under their configured names.
// A source element has no src attribute and carries src as srcset when srcset is disabled.
func (r Result) Attributes() map[string]string {
	cfg := r.attributeConfig.withDefaults()
	attrs := maps.Clone(r.htmlAttributes)
	if attrs == nil {
		attrs = make(map[string]string)
	}
	if r.Sizes != "" {
		attrs[cfg.Sizes] = r.Sizes
	}
	if r.Width > 0 {
		attrs["width"] = strconv.Itoa(r.Width)
	}
	if r.Height > 0 {
		attrs["height"] = strconv.Itoa(r.Height)
	}
	if r.Element == ElementSource {
		if r.disableSrcSet {
			attrs[cfg.SrcSet] = r.Src
		} else {
			attrs[cfg.SrcSet] = r.SrcSet
		}
		return attrs
	}
	attrs[cfg.Src] = r.Src
	if !r.disableSrcSet {
		attrs[cfg.SrcSet] = r.SrcSet
	}
	return attrs
}
