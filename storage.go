package imgixset

import (
	"context"
	"time"
)

// Storage get and put published blobs such as manifests
type Storage interface {
	Get(ctx context.Context, key string) (*Blob, error)
	Put(ctx context.Context, key string, blob *Blob) error
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (*Stat, error)
}

// Stat blob attributes
type Stat struct {
	ModifiedTime time.Time
	ETag         string
	Size         int64
}
