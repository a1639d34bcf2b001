package ixparams

// Aliases maps long form parameter names to the short names recognised by imgix.
// https://docs.imgix.com/apis/rendering
var Aliases = map[string]string{
	// adjustment
	"brightness":     "bri",
	"contrast":       "con",
	"exposure":       "exp",
	"gamma":          "gam",
	"highlights":     "high",
	"hue":            "hue",
	"invert":         "invert",
	"saturation":     "sat",
	"shaddows":       "shad",
	"shadows":        "shad",
	"sharpness":      "sharp",
	"unsharp-mask":   "usm",
	"unsharp-radius": "usmrad",
	"vibrance":       "vib",

	// automatic
	"auto-features": "auto",

	// background
	"background-color": "bg",

	// blend
	"blend":         "blend",
	"blend-mode":    "bm",
	"blend-align":   "ba",
	"blend-alpha":   "balph",
	"blend-padding": "bp",
	"blend-width":   "bw",
	"blend-height":  "bh",
	"blend-fit":     "bf",
	"blend-crop":    "bc",
	"blend-size":    "bs",
	"blend-x":       "bx",
	"blend-y":       "by",

	// border and padding
	"border":  "border",
	"padding": "pad",

	// face detection
	"face-index":   "faceindex",
	"face-padding": "facepad",
	"faces":        "faces",

	// format
	"chroma-subsampling":   "chromasub",
	"color-quantization":   "colorquant",
	"download":             "dl",
	"DPI":                  "dpi",
	"format":               "fm",
	"lossless-compression": "lossless",
	"quality":              "q",

	// mask
	"mask-image": "mask",

	// noise
	"noise-blur":    "nr",
	"noise-sharpen": "nrs",

	// rotation
	"flip-direction": "flip",
	"orientation":    "or",
	"rotation-angle": "rot",

	// size
	"crop-mode":    "crop",
	"fit-mode":     "fit",
	"image-height": "h",
	"image-width":  "w",
	"aspect-ratio": "ar",

	// stylize
	"blurring":   "blur",
	"halftone":   "htn",
	"monotone":   "mono",
	"pixelate":   "px",
	"sepia-tone": "sepia",

	"height": "h",
	"width":  "w",
}

// Canonicalize maps long form keys to their short imgix aliases.
// Unknown keys and short keys pass through, values are left untouched.
func Canonicalize(long Params) Params {
	if long == nil {
		return nil
	}
	short := make(Params, len(long))
	keys := long.Keys()
	// short keys are applied last so an explicit short key wins
	// over a long key mapping onto it
	for _, k := range keys {
		if alias, ok := Aliases[k]; ok && alias != k {
			short[alias] = long[k]
		}
	}
	for _, k := range keys {
		if alias, ok := Aliases[k]; !ok || alias == k {
			short[k] = long[k]
		}
	}
	return short
}
