package imgixset

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// BlobType blob content type
type BlobType int

const (
	BlobTypeUnknown BlobType = iota
	BlobTypeEmpty
	BlobTypeJSON
	BlobTypeYAML
	BlobTypeHTML
)

// Blob abstraction for file path or bytes data, with sniffed content type
type Blob struct {
	path     string
	buf      []byte
	once     sync.Once
	err      error
	blobType BlobType
}

// NewBlobFromPath creates Blob of file path, read lazily
func NewBlobFromPath(path string) *Blob {
	return &Blob{path: path}
}

// NewBlobFromBytes creates Blob from bytes
func NewBlobFromBytes(buf []byte) *Blob {
	return &Blob{buf: buf}
}

// NewBlobFromJSON creates JSON Blob from marshalled v, without HTML escaping
func NewBlobFromJSON(v any) *Blob {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(v)
	return &Blob{buf: bytes.TrimSuffix(buf.Bytes(), []byte("\n")), err: err}
}

func (b *Blob) readAllOnce() {
	b.once.Do(func() {
		if b.err != nil {
			return
		}
		if len(b.buf) == 0 && b.path != "" {
			b.buf, b.err = os.ReadFile(b.path)
			if b.err != nil {
				if os.IsNotExist(b.err) {
					b.err = ErrNotFound
				}
				return
			}
		}
		b.blobType = sniff(b.buf, b.path)
	})
}

func sniff(buf []byte, path string) BlobType {
	if len(buf) == 0 {
		return BlobTypeEmpty
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return BlobTypeYAML
	}
	trimmed := bytes.TrimSpace(buf)
	switch {
	case len(trimmed) == 0:
		return BlobTypeUnknown
	case trimmed[0] == '{' || trimmed[0] == '[':
		return BlobTypeJSON
	case trimmed[0] == '<':
		return BlobTypeHTML
	}
	return BlobTypeUnknown
}

// IsEmpty check if blob is empty
func (b *Blob) IsEmpty() bool {
	b.readAllOnce()
	return len(b.buf) == 0
}

// BlobType returns sniffed blob type
func (b *Blob) BlobType() BlobType {
	b.readAllOnce()
	return b.blobType
}

// ContentType returns MIME content type of blob
func (b *Blob) ContentType() string {
	switch b.BlobType() {
	case BlobTypeJSON:
		return "application/json"
	case BlobTypeYAML:
		return "application/yaml"
	case BlobTypeHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// ReadAll reads all blob bytes
func (b *Blob) ReadAll() ([]byte, error) {
	b.readAllOnce()
	return b.buf, b.err
}

// NewReader creates reader of blob bytes and its size
func (b *Blob) NewReader() (io.ReadCloser, int64, error) {
	b.readAllOnce()
	if b.err != nil {
		return nil, 0, b.err
	}
	return io.NopCloser(bytes.NewReader(b.buf)), int64(len(b.buf)), nil
}
