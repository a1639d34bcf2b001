package srcset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cshum/imgixset/ixparams"
	"github.com/cshum/imgixset/ixurl"
)

// InvalidARFormat warning name of malformed aspect ratio
const InvalidARFormat = "invalidARFormat"

// Mode srcset rendering mode
type Mode int

const (
	// Responsive width descriptors over target widths
	Responsive Mode = iota
	// FixedSize density descriptors 1x to 5x
	FixedSize
	// ArtDirected width descriptors with height derived from aspect ratio
	ArtDirected
)

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case FixedSize:
		return "fixed"
	case ArtDirected:
		return "art-directed"
	default:
		return "responsive"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fixed":
		*m = FixedSize
	case "art-directed":
		*m = ArtDirected
	case "responsive":
		*m = Responsive
	default:
		return fmt.Errorf("srcset: unknown mode %q", text)
	}
	return nil
}

// Variant srcset candidate
type Variant struct {
	URL        string `json:"url"`
	Descriptor string `json:"descriptor"`
}

// String implements fmt.Stringer
func (v Variant) String() string {
	return v.URL + " " + v.Descriptor
}

// Variants srcset candidate list
type Variants []Variant

// String joins candidates into srcset attribute value
func (vs Variants) String() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Warning non-fatal advisory raised during generation
type Warning struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Input srcset generation input
type Input struct {
	// Path image path or fully qualified URL, query string excluded
	Path string
	// Domain imgix source domain for paths without scheme
	Domain string
	// Params canonical imgix params
	Params ixparams.Params
	// Width explicit width, 0 if unset
	Width int
	// Height explicit height, 0 if unset
	Height int

	DisableSrcSet       bool
	DisableQualityByDPR bool

	URLOptions []ixurl.Option
}

// Result srcset generation result
type Result struct {
	Mode     Mode
	Src      string
	SrcSet   string
	Variants Variants
	Warnings []Warning
}

// ModeOf derives the rendering mode from explicit dimensions and params
func ModeOf(in Input) Mode {
	if in.Width > 0 || in.Height > 0 || in.Params.Has("w") || in.Params.Has("h") {
		return FixedSize
	}
	if ar, ok := in.Params["ar"]; ok {
		if _, valid := ixparams.ParseAspectRatio(ar); valid {
			return ArtDirected
		}
	}
	return Responsive
}

// Generate builds the primary src and srcset of input
func Generate(in Input) (res Result) {
	params := in.Params.Clone()
	if in.Width > 0 {
		params["w"] = in.Width
	}
	if in.Height > 0 {
		params["h"] = in.Height
	}
	res.Mode = ModeOf(in)
	if res.Mode != FixedSize {
		delete(params, "w")
		delete(params, "h")
	}
	res.Src = ixurl.Build(in.Path, in.Domain, params, in.URLOptions...)
	if ar, ok := params["ar"]; ok && res.Mode == Responsive {
		res.Warnings = append(res.Warnings, Warning{
			Name: InvalidARFormat,
			Message: fmt.Sprintf(
				`The aspect ratio passed ("%s") is not in the correct format. The correct format is "W:H".`,
				ixparams.FormatValue(ar)),
		})
	}
	if in.DisableSrcSet || res.Src == "" {
		res.SrcSet = res.Src
		return
	}
	switch res.Mode {
	case FixedSize:
		res.Variants = fixedVariants(in, params)
	case ArtDirected:
		ratio, _ := ixparams.ParseAspectRatio(params["ar"])
		res.Variants = widthVariants(in, params, func(v ixparams.Params, width int) {
			v["h"] = ratio.HeightFor(width)
		})
	default:
		res.Variants = widthVariants(in, params, nil)
	}
	res.SrcSet = res.Variants.String()
	return
}

func fixedVariants(in Input, params ixparams.Params) Variants {
	q, hasQ := params["q"]
	hasQ = hasQ && q != nil && ixparams.FormatValue(q) != ""
	base := params.Without("q")
	variants := make(Variants, 0, MaxDPR)
	for dpr := 1; dpr <= MaxDPR; dpr++ {
		v := base.Clone()
		v["dpr"] = dpr
		if hasQ {
			v["q"] = q
		} else if !in.DisableQualityByDPR {
			v["q"] = DPRQuality(dpr)
		}
		variants = append(variants, Variant{
			URL:        ixurl.Build(in.Path, in.Domain, v, in.URLOptions...),
			Descriptor: strconv.Itoa(dpr) + "x",
		})
	}
	return variants
}

func widthVariants(in Input, params ixparams.Params, fn func(v ixparams.Params, width int)) Variants {
	widths := targetWidths()
	variants := make(Variants, 0, len(widths))
	for _, width := range widths {
		v := params.Clone()
		v["w"] = width
		if fn != nil {
			fn(v, width)
		}
		variants = append(variants, Variant{
			URL:        ixurl.Build(in.Path, in.Domain, v, in.URLOptions...),
			Descriptor: strconv.Itoa(width) + "w",
		})
	}
	return variants
}
