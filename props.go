package imgixset

import (
	"fmt"
	"maps"

	"github.com/cshum/imgixset/ixparams"
	"github.com/cshum/imgixset/ixurl"
	"github.com/cshum/imgixset/srcset"
)

// Element rendered element kind
type Element string

const (
	// ElementImg img element, the default
	ElementImg Element = "img"
	// ElementSource source element within picture
	ElementSource Element = "source"
)

// AttributeConfig output attribute names, for lazy loading setups such as data-src
type AttributeConfig struct {
	Src    string `json:"src,omitempty" yaml:"src,omitempty"`
	SrcSet string `json:"srcSet,omitempty" yaml:"srcSet,omitempty"`
	Sizes  string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
}

// withDefaults fills unset attribute names
func (c AttributeConfig) withDefaults() AttributeConfig {
	if c.Src == "" {
		c.Src = "src"
	}
	if c.SrcSet == "" {
		c.SrcSet = "srcset"
	}
	if c.Sizes == "" {
		c.Sizes = "sizes"
	}
	return c
}

// Props image rendering input
type Props struct {
	Element Element `json:"element,omitempty" yaml:"element,omitempty"`

	Src    string `json:"src,omitempty" yaml:"src,omitempty"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
	Sizes  string `json:"sizes,omitempty" yaml:"sizes,omitempty"`

	ImgixParams     ixparams.Params   `json:"imgixParams,omitempty" yaml:"imgixParams,omitempty"`
	HTMLAttributes  map[string]string `json:"htmlAttributes,omitempty" yaml:"htmlAttributes,omitempty"`
	AttributeConfig AttributeConfig   `json:"attributeConfig,omitempty" yaml:"attributeConfig,omitempty"`

	DisableSrcSet       bool `json:"disableSrcSet,omitempty" yaml:"disableSrcSet,omitempty"`
	DisableLibraryParam bool `json:"disableLibraryParam,omitempty" yaml:"disableLibraryParam,omitempty"`
	DisablePathEncoding bool `json:"disablePathEncoding,omitempty" yaml:"disablePathEncoding,omitempty"`
	DisableQualityByDPR bool `json:"disableQualityByDPR,omitempty" yaml:"disableQualityByDPR,omitempty"`
	DisableHTTPS        bool `json:"disableHTTPS,omitempty" yaml:"disableHTTPS,omitempty"`

	// InPicture set on children of Picture
	InPicture bool `json:"-" yaml:"-"`

	// Deprecated: use ImgixParams auto
	Auto []string `json:"auto,omitempty" yaml:"auto,omitempty"`
	// Deprecated: use ImgixParams crop
	Crop string `json:"crop,omitempty" yaml:"crop,omitempty"`
	// Deprecated: use ImgixParams fit
	Fit string `json:"fit,omitempty" yaml:"fit,omitempty"`
	// Deprecated: use ImgixParams
	CustomParams ixparams.Params `json:"customParams,omitempty" yaml:"customParams,omitempty"`
	// Deprecated: use ImgixParams crop=faces
	Faces bool `json:"faces,omitempty" yaml:"faces,omitempty"`
	// Deprecated: use ImgixParams crop=entropy
	Entropy bool `json:"entropy,omitempty" yaml:"entropy,omitempty"`
}

// MergeProps merges outer provider props into inner props.
// Inner values win unless unset. ImgixParams, CustomParams and HTMLAttributes
// merge per key, flags combine.
func MergeProps(outer, inner Props) Props {
	p := inner
	if p.Element == "" {
		p.Element = outer.Element
	}
	if p.Src == "" {
		p.Src = outer.Src
	}
	if p.Domain == "" {
		p.Domain = outer.Domain
	}
	if p.Width == 0 {
		p.Width = outer.Width
	}
	if p.Height == 0 {
		p.Height = outer.Height
	}
	if p.Sizes == "" {
		p.Sizes = outer.Sizes
	}
	if outer.ImgixParams != nil {
		p.ImgixParams = ixparams.Merge(outer.ImgixParams, inner.ImgixParams)
	}
	if outer.CustomParams != nil {
		p.CustomParams = ixparams.Merge(outer.CustomParams, inner.CustomParams)
	}
	if outer.HTMLAttributes != nil {
		attrs := maps.Clone(outer.HTMLAttributes)
		maps.Copy(attrs, inner.HTMLAttributes)
		p.HTMLAttributes = attrs
	}
	if p.AttributeConfig.Src == "" {
		p.AttributeConfig.Src = outer.AttributeConfig.Src
	}
	if p.AttributeConfig.SrcSet == "" {
		p.AttributeConfig.SrcSet = outer.AttributeConfig.SrcSet
	}
	if p.AttributeConfig.Sizes == "" {
		p.AttributeConfig.Sizes = outer.AttributeConfig.Sizes
	}
	p.DisableSrcSet = p.DisableSrcSet || outer.DisableSrcSet
	p.DisableLibraryParam = p.DisableLibraryParam || outer.DisableLibraryParam
	p.DisablePathEncoding = p.DisablePathEncoding || outer.DisablePathEncoding
	p.DisableQualityByDPR = p.DisableQualityByDPR || outer.DisableQualityByDPR
	p.DisableHTTPS = p.DisableHTTPS || outer.DisableHTTPS
	p.InPicture = p.InPicture || outer.InPicture
	if p.Auto == nil {
		p.Auto = outer.Auto
	}
	if p.Crop == "" {
		p.Crop = outer.Crop
	}
	if p.Fit == "" {
		p.Fit = outer.Fit
	}
	p.Faces = p.Faces || outer.Faces
	p.Entropy = p.Entropy || outer.Entropy
	return p
}

func deprecated(prop, usage string) srcset.Warning {
	return srcset.Warning{
		Name: DeprecatedProp,
		Message: fmt.Sprintf(
			"The prop '%s' has been deprecated. Please update the usage to imgixParams %s", prop, usage),
	}
}

// Normalize folds deprecated props into ImgixParams, unsets width and height
// not greater than 1, and joins a relative src with the domain.
// Warnings are returned for every deprecated prop in use.
func Normalize(p Props) (Props, []srcset.Warning) {
	var warnings []srcset.Warning
	params := ixparams.Merge(p.CustomParams, p.ImgixParams)
	if p.CustomParams != nil {
		warnings = append(warnings, deprecated("customParams", "{...customParams}"))
	}
	if p.Auto != nil {
		params["auto"] = p.Auto
		warnings = append(warnings, deprecated("auto", "{auto: value}"))
	}
	if p.Crop != "" {
		params["crop"] = p.Crop
		warnings = append(warnings, deprecated("crop", "{crop: value}"))
	}
	if p.Fit != "" {
		params["fit"] = p.Fit
		warnings = append(warnings, deprecated("fit", "{fit: value}"))
	}
	if p.Faces {
		if !params.Has("crop") {
			params["crop"] = "faces"
		}
		warnings = append(warnings, deprecated("faces", "{crop: 'faces'}"))
	}
	if p.Entropy {
		if !params.Has("crop") {
			params["crop"] = "entropy"
		}
		warnings = append(warnings, deprecated("entropy", "{crop: 'entropy'}"))
	}
	p.ImgixParams = params
	p.CustomParams, p.Auto, p.Crop, p.Fit, p.Faces, p.Entropy = nil, nil, "", "", false, false

	if p.Width <= 1 {
		p.Width = 0
	}
	if p.Height <= 1 {
		p.Height = 0
	}
	if p.Element == "" {
		p.Element = ElementImg
	}
	p.Src = ixurl.FormatSrc(p.Src, p.Domain, !p.DisableHTTPS)
	return p, warnings
}
