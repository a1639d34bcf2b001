// Package probe reads intrinsic image dimensions without decoding pixels.
package probe

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cshum/imgixset"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Size intrinsic image size
type Size struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// AspectRatio returns the size reduced to an imgix "w:h" ratio
func (s Size) AspectRatio() string {
	if s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	d := gcd(s.Width, s.Height)
	return strconv.Itoa(s.Width/d) + ":" + strconv.Itoa(s.Height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Decode reads image header from r
func Decode(r io.Reader) (Size, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Size{}, imgixset.ErrUnsupportedFormat
		}
		return Size{}, err
	}
	return Size{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// File reads image header of file name within dir.
// Names that are absolute or escape dir, symlinks included, are rejected.
func File(dir, name string) (Size, error) {
	if filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return Size{}, imgixset.NewError(fmt.Sprintf("file %q outside base dir", name), http.StatusBadRequest)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return Size{}, err
	}
	defer func() {
		_ = root.Close()
	}()
	f, err := root.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return Size{}, imgixset.ErrNotFound
		}
		return Size{}, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}
