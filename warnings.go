package imgixset

import (
	"slices"
	"sync"

	"github.com/cshum/imgixset/srcset"
)

// Warning names
const (
	// FallbackImage picture without fallback img
	FallbackImage = "fallbackImage"
	// SizesAttribute responsive image without width, height or sizes
	SizesAttribute = "sizesAttribute"
	// InvalidARFormat aspect ratio not in "W:H" format
	InvalidARFormat = srcset.InvalidARFormat
	// DeprecatedProp use of a deprecated prop
	DeprecatedProp = "deprecatedProp"
)

// Warnings per kind warning toggles, all enabled by default.
// Unknown names are ignored.
type Warnings struct {
	mu      sync.RWMutex
	enabled map[string]bool
}

// NewWarnings creates Warnings with every kind enabled
func NewWarnings() *Warnings {
	return &Warnings{enabled: map[string]bool{
		FallbackImage:   true,
		SizesAttribute:  true,
		InvalidARFormat: true,
		DeprecatedProp:  true,
	}}
}

func (w *Warnings) set(name string, value bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.enabled[name]; !ok {
		return
	}
	w.enabled[name] = value
}

// Disable disables warning of name
func (w *Warnings) Disable(names ...string) {
	for _, name := range names {
		w.set(name, false)
	}
}

// Enable enables warning of name
func (w *Warnings) Enable(names ...string) {
	for _, name := range names {
		w.set(name, true)
	}
}

// Enabled reports whether warning of name is enabled
func (w *Warnings) Enabled(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled[name]
}

// Disabled returns names of disabled warnings, sorted
func (w *Warnings) Disabled() (names []string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for name, enabled := range w.enabled {
		if !enabled {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return
}

// DefaultWarnings process wide warning toggles used by Builder unless overridden
var DefaultWarnings = NewWarnings()

// DisableWarning disables warning of name process wide
func DisableWarning(name string) {
	DefaultWarnings.Disable(name)
}

// EnableWarning enables warning of name process wide
func EnableWarning(name string) {
	DefaultWarnings.Enable(name)
}
