package srcset

import (
	"math"
	"slices"
	"sync"
)

const (
	// MinWidth smallest target width
	MinWidth = 100
	// MaxWidth largest target width
	MaxWidth = 8192

	// 8% increment applied twice per step
	incrementPercentage = 8
)

var targetWidths = sync.OnceValue(func() []int {
	var widths []int
	ensureEven := func(n float64) int {
		return 2 * int(math.Round(n/2))
	}
	for prev := float64(MinWidth); prev <= MaxWidth; prev *= 1 + incrementPercentage/100.0*2 {
		widths = append(widths, ensureEven(prev))
	}
	widths = append(widths, MaxWidth)
	slices.Sort(widths)
	return slices.Compact(widths)
})

// TargetWidths returns the candidate widths for responsive srcset,
// ascending from MinWidth to MaxWidth
func TargetWidths() []int {
	return slices.Clone(targetWidths())
}

// FindClosest returns the value of the ascending table closest to value.
// Values outside the table clamp to its boundaries, ties resolve to the larger candidate.
func FindClosest(value float64, table []int) int {
	if len(table) == 0 {
		return 0
	}
	if value <= float64(table[0]) {
		return table[0]
	}
	last := len(table) - 1
	if value >= float64(table[last]) {
		return table[last]
	}
	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if float64(table[mid]) < value {
			lo = mid
		} else {
			hi = mid
		}
	}
	if value-float64(table[lo]) < float64(table[hi])-value {
		return table[lo]
	}
	return table[hi]
}

// FindClosestWidth snaps value to the closest target width
func FindClosestWidth(value float64) int {
	return FindClosest(value, targetWidths())
}
