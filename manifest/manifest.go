// Package manifest builds the imgix src and srcset of a batch of images
// declared in a YAML or JSON file, and publishes the result to storages.
package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/ixparams"
	"github.com/cshum/imgixset/probe"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// File manifest file declaration
type File struct {
	// Defaults props merged under every image
	Defaults imgixset.Props `yaml:"defaults" json:"defaults"`
	Images   []Entry        `yaml:"images" json:"images"`
}

// Entry image declaration
type Entry struct {
	imgixset.Props `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
	// File local image file probed for its intrinsic size
	File string `yaml:"file,omitempty" json:"file,omitempty"`
	// Sources picture sources, rendered before the entry img
	Sources []imgixset.Props `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Manifest built manifest
type Manifest struct {
	Version string  `json:"version"`
	Images  []Image `json:"images"`
}

// Image built image
type Image struct {
	Name      string      `json:"name"`
	Intrinsic *probe.Size `json:"intrinsic,omitempty"`
	Picture   bool        `json:"picture,omitempty"`
	Elements  []Element   `json:"elements"`
}

// Element built img or source element
type Element struct {
	imgixset.Result
	Attributes map[string]string `json:"attributes"`
}

// Load decodes manifest file of YAML or JSON from r.
// Unknown fields are rejected.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	f := &File{}
	if err := dec.Decode(f); err != nil {
		if err == io.EOF {
			return f, nil
		}
		return nil, imgixset.NewError(err.Error(), http.StatusBadRequest)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadFile decodes manifest file of path
func LoadFile(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, imgixset.ErrNotFound
		}
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return Load(r)
}

// Validate checks every image has a unique name and a src
func (f *File) Validate() (err error) {
	names := make(map[string]bool, len(f.Images))
	for i, e := range f.Images {
		switch {
		case e.Name == "":
			err = multierr.Append(err, invalid("image %d: missing name", i))
		case names[e.Name]:
			err = multierr.Append(err, invalid("image %q: duplicated name", e.Name))
		}
		names[e.Name] = true
		if e.Src == "" {
			err = multierr.Append(err, invalid("image %q: missing src", e.Name))
		}
	}
	return
}

func invalid(format string, args ...any) error {
	return imgixset.NewError(fmt.Sprintf(format, args...), http.StatusBadRequest)
}

// Build builds every image of f through b, concurrently.
// Images failing to build are left out and their errors combined.
func Build(ctx context.Context, b *imgixset.Builder, f *File, options ...Option) (*Manifest, error) {
	o := newOptions(options...)
	m := &Manifest{
		Version: imgixset.Version,
		Images:  make([]Image, len(f.Images)),
	}
	built := make([]bool, len(f.Images))
	var mu sync.Mutex
	var errs error
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i, e := range f.Images {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := buildImage(b, f.Defaults, e, o)
			if err != nil {
				o.Logger.Warn("manifest-image", zap.String("name", e.Name), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("image %q: %w", e.Name, err))
				mu.Unlock()
				return nil
			}
			m.Images[i] = img
			built[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	images := m.Images[:0]
	for i, img := range m.Images {
		if built[i] {
			images = append(images, img)
		}
	}
	m.Images = images
	o.Logger.Debug("manifest-build",
		zap.Int("images", len(m.Images)),
		zap.Int("errors", len(multierr.Errors(errs))))
	return m, errs
}

func buildImage(b *imgixset.Builder, defaults imgixset.Props, e Entry, o *options) (Image, error) {
	img := Image{Name: e.Name}
	p := imgixset.MergeProps(defaults, e.Props)
	if e.File != "" {
		size, err := probe.File(o.BaseDir, e.File)
		if err != nil {
			return img, err
		}
		img.Intrinsic = &size
		p = withIntrinsic(p, size)
	}
	if len(e.Sources) == 0 {
		img.Elements = []Element{newElement(b.Build(p))}
		return img, nil
	}
	img.Picture = true
	children := make([]imgixset.Props, 0, len(e.Sources)+1)
	for _, s := range e.Sources {
		s = imgixset.MergeProps(defaults, s)
		s.Element = imgixset.ElementSource
		children = append(children, s)
	}
	p.Element = imgixset.ElementImg
	children = append(children, p)
	for _, res := range b.Picture(children...) {
		img.Elements = append(img.Elements, newElement(res))
	}
	return img, nil
}

// withIntrinsic keeps the intrinsic aspect ratio on responsive images
// that have neither explicit dimensions nor ar
func withIntrinsic(p imgixset.Props, size probe.Size) imgixset.Props {
	if p.Width > 1 || p.Height > 1 {
		return p
	}
	params := ixparams.Canonicalize(p.ImgixParams)
	if params == nil {
		params = ixparams.Params{}
	}
	if params.Has("w") || params.Has("h") || params.Has("ar") {
		return p
	}
	if ar := size.AspectRatio(); ar != "" {
		params["ar"] = ar
	}
	p.ImgixParams = params
	return p
}

func newElement(res imgixset.Result) Element {
	return Element{Result: res, Attributes: res.Attributes()}
}
