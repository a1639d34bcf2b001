package ixparams

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var aspectRatioRegex = regexp.MustCompile(`^\d+(\.\d+)?:\d+(\.\d+)?$`)

// AspectRatio parsed "W:H" aspect ratio
type AspectRatio struct {
	Width  float64
	Height float64
}

// Ratio width over height
func (a AspectRatio) Ratio() float64 {
	return a.Width / a.Height
}

// HeightFor returns the height of width at this ratio, rounded up
func (a AspectRatio) HeightFor(width int) int {
	return int(math.Ceil(float64(width) / a.Ratio()))
}

// String implements fmt.Stringer
func (a AspectRatio) String() string {
	return strconv.FormatFloat(a.Width, 'f', -1, 64) + ":" +
		strconv.FormatFloat(a.Height, 'f', -1, 64)
}

// ValidAspectRatio reports whether v is a string in "W:H" format
func ValidAspectRatio(v any) bool {
	s, ok := v.(string)
	return ok && aspectRatioRegex.MatchString(s)
}

// ParseAspectRatio parses v in "W:H" format.
// Ratios with a zero side are rejected as they have no usable height.
func ParseAspectRatio(v any) (a AspectRatio, ok bool) {
	if !ValidAspectRatio(v) {
		return
	}
	w, h, _ := strings.Cut(v.(string), ":")
	a.Width, _ = strconv.ParseFloat(w, 64)
	a.Height, _ = strconv.ParseFloat(h, 64)
	if a.Width <= 0 || a.Height <= 0 {
		return AspectRatio{}, false
	}
	return a, true
}
