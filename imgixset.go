package imgixset

import (
	"slices"
	"strconv"

	"github.com/cshum/imgixset/ixparams"
	"github.com/cshum/imgixset/ixurl"
	"github.com/cshum/imgixset/srcset"
	"go.uber.org/zap"
)

// Version library version, sent as ixlib=go-<Version>
const Version = "0.1.0"

// Observer observes builds and emitted warnings
type Observer interface {
	ObserveBuild(mode srcset.Mode)
	ObserveWarning(name string)
}

// Builder builds imgix src and srcset from props
type Builder struct {
	// Defaults provider props merged under every built props
	Defaults  Props
	Signer    ixurl.Signer
	Warnings  *Warnings
	Observers []Observer
	Logger    *zap.Logger
	Debug     bool
}

// New create new Builder
func New(options ...Option) *Builder {
	b := &Builder{
		Warnings: DefaultWarnings,
		Logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(b)
	}
	if b.Debug {
		b.debugLog()
	}
	return b
}

// Build builds img attributes of props
func (b *Builder) Build(p Props) Result {
	return b.build(p, nil)
}

// BuildSource builds source attributes of props, for use within picture
func (b *Builder) BuildSource(p Props) Result {
	p.Element = ElementSource
	return b.build(p, nil)
}

// Picture builds children of a picture element in render order.
// The first img child is moved last as the fallback image,
// a fallbackImage warning is raised when there is none.
func (b *Builder) Picture(children ...Props) []Result {
	results := make([]Result, len(children))
	imgIdx := -1
	for i, child := range children {
		child.InPicture = true
		child = MergeProps(b.Defaults, child)
		if child.Element == "" {
			child.Element = ElementImg
		}
		if imgIdx == -1 && child.Element == ElementImg {
			imgIdx = i
		}
		results[i] = b.build(child, nil)
	}
	if imgIdx == -1 {
		b.warn(nil, Props{}, srcset.Warning{
			Name:    FallbackImage,
			Message: "No fallback img found in the children of a picture. A fallback image should be passed to ensure the image renders correctly at all dimensions.",
		})
		return results
	}
	if imgIdx != len(results)-1 {
		img := results[imgIdx]
		results = append(slices.Delete(results, imgIdx, imgIdx+1), img)
	}
	return results
}

// BuildURL builds a single imgix URL of src with params.
// Params embedded in src are overridden by params, no default params applied.
func (b *Builder) BuildURL(src string, params ixparams.Params) string {
	return b.URL(Props{Src: src}, params)
}

// URL builds a single imgix URL of props src, domain and flags with params.
// ImgixParams of props are overridden by params, default params are not applied.
func (b *Builder) URL(p Props, params ixparams.Params) string {
	explicit := ixparams.Merge(p.ImgixParams, params)
	p, _ = Normalize(MergeProps(b.Defaults, p))
	path, embedded := ixparams.ExtractQuery(p.Src)
	return ixurl.Build(path, "", ixparams.Merge(
		embedded,
		ixparams.Canonicalize(explicit),
		b.libraryParam(p),
	), b.urlOptions(p)...)
}

// Background builds a single imgix URL of props for a measured container
// that cannot use srcset, such as a CSS background image
func (b *Builder) Background(p Props, m srcset.Measure) string {
	p, warnings := Normalize(MergeProps(b.Defaults, p))
	b.warn(nil, p, warnings...)
	in := b.input(p)
	if in.Width == 0 {
		in.Width = intParam(in.Params, "w")
	}
	if in.Height == 0 {
		in.Height = intParam(in.Params, "h")
	}
	return srcset.Background(in, m)
}

func (b *Builder) build(p Props, warnings []srcset.Warning) Result {
	if !p.InPicture {
		p = MergeProps(b.Defaults, p)
	}
	p, deprecations := Normalize(p)
	warnings = append(warnings, deprecations...)
	if p.Width == 0 && p.Height == 0 && p.Sizes == "" && !p.InPicture && p.Element == ElementImg {
		warnings = append(warnings, srcset.Warning{
			Name:    SizesAttribute,
			Message: "If width and height are not set, a sizes attribute should be passed.",
		})
	}
	gen := srcset.Generate(b.input(p))
	res := Result{
		Element:         p.Element,
		Mode:            gen.Mode,
		Src:             gen.Src,
		SrcSet:          gen.SrcSet,
		Sizes:           p.Sizes,
		Width:           p.Width,
		Height:          p.Height,
		Variants:        gen.Variants,
		disableSrcSet:   p.DisableSrcSet,
		htmlAttributes:  p.HTMLAttributes,
		attributeConfig: p.AttributeConfig,
	}
	res.Warnings = b.warn(res.Warnings, p, append(warnings, gen.Warnings...)...)
	for _, o := range b.Observers {
		o.ObserveBuild(res.Mode)
	}
	if b.Debug {
		b.Logger.Debug("build",
			zap.String("src", res.Src),
			zap.Stringer("mode", res.Mode),
			zap.Int("variants", len(res.Variants)))
	}
	return res
}

// input resolves srcset input of normalized props.
// Params precedence: defaults, params embedded in src, imgixParams, ixlib,
// then explicit width and height applied by srcset generation.
func (b *Builder) input(p Props) srcset.Input {
	path, embedded := ixparams.ExtractQuery(p.Src)
	params := ixparams.Merge(
		ixparams.Params{"auto": []string{"format"}},
		ixparams.Canonicalize(embedded),
		ixparams.Canonicalize(p.ImgixParams),
		b.libraryParam(p),
	)
	if !params.Has("fit") && !params.Has("crop") {
		params["fit"] = "crop"
	}
	return srcset.Input{
		Path:                path,
		Params:              params,
		Width:               p.Width,
		Height:              p.Height,
		DisableSrcSet:       p.DisableSrcSet,
		DisableQualityByDPR: p.DisableQualityByDPR,
		URLOptions:          b.urlOptions(p),
	}
}

func (b *Builder) libraryParam(p Props) ixparams.Params {
	if p.DisableLibraryParam {
		return nil
	}
	return ixparams.Params{"ixlib": "go-" + Version}
}

func (b *Builder) urlOptions(p Props) []ixurl.Option {
	opts := []ixurl.Option{
		ixurl.WithHTTPS(!p.DisableHTTPS),
		ixurl.WithDisablePathEncoding(p.DisablePathEncoding),
	}
	if b.Signer != nil {
		opts = append(opts, ixurl.WithSigner(b.Signer))
	}
	return opts
}

// warn logs and observes enabled warnings, appending them to dst
func (b *Builder) warn(dst []srcset.Warning, p Props, warnings ...srcset.Warning) []srcset.Warning {
	for _, w := range warnings {
		if b.Warnings != nil && !b.Warnings.Enabled(w.Name) {
			continue
		}
		b.Logger.Warn(w.Message, zap.String("warning", w.Name), zap.String("src", p.Src))
		for _, o := range b.Observers {
			o.ObserveWarning(w.Name)
		}
		dst = append(dst, w)
	}
	return dst
}

// Memo creates a Memo building through b
func (b *Builder) Memo() *Memo {
	return &Memo{builder: b}
}

func (b *Builder) debugLog() {
	if !b.Logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	b.Logger.Debug("config",
		zap.String("domain", b.Defaults.Domain),
		zap.Any("imgix_params", b.Defaults.ImgixParams),
		zap.Bool("signed", b.Signer != nil),
		zap.Bool("disable_https", b.Defaults.DisableHTTPS),
		zap.Bool("disable_library_param", b.Defaults.DisableLibraryParam),
		zap.Bool("disable_path_encoding", b.Defaults.DisablePathEncoding),
		zap.Bool("disable_quality_by_dpr", b.Defaults.DisableQualityByDPR),
		zap.Bool("disable_srcset", b.Defaults.DisableSrcSet),
		zap.Strings("disabled_warnings", b.Warnings.Disabled()),
	)
}

func intParam(params ixparams.Params, key string) int {
	v, ok := params.Get(key)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseFloat(v, 64)
	return int(n)
}
