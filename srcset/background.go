package srcset

import (
	"math"

	"github.com/cshum/imgixset/ixurl"
)

// Measure rendered container size and device pixel ratio,
// as reported by a layout measurement
type Measure struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
}

// Ratio width over height of the measured container, 0 if not measurable
func (m Measure) Ratio() float64 {
	if m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	return m.Width / m.Height
}

// Background builds a single URL for a container that cannot use srcset.
// Without explicit dimensions the measured width snaps to the closest target width
// and height follows the measured ratio. One explicit dimension derives the other
// from the measured ratio, both explicit are used as is.
func Background(in Input, m Measure) string {
	w, h := backgroundSize(in.Width, in.Height, m)
	params := in.Params.Without("w", "h")
	if w > 0 {
		params["w"] = w
	}
	if h > 0 {
		params["h"] = h
	}
	dpr := m.DPR
	if dpr <= 0 {
		dpr = 1
	}
	params["dpr"] = math.Round(dpr*100) / 100
	return ixurl.Build(in.Path, in.Domain, params, in.URLOptions...)
}

func backgroundSize(forcedWidth, forcedHeight int, m Measure) (w, h int) {
	ratio := m.Ratio()
	switch {
	case forcedWidth > 0 && forcedHeight > 0:
		return forcedWidth, forcedHeight
	case forcedWidth > 0:
		w = forcedWidth
		if ratio > 0 {
			h = int(math.Ceil(float64(w) / ratio))
		}
		return
	case forcedHeight > 0:
		h = forcedHeight
		if ratio > 0 {
			w = int(math.Ceil(float64(h) * ratio))
		}
		return
	}
	if m.Width <= 0 {
		return 0, 0
	}
	w = FindClosestWidth(m.Width)
	if ratio > 0 {
		h = int(math.Ceil(float64(w) / ratio))
	}
	return
}
