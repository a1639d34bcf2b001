package gcloudstorage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/ixurl"
)

// GCloudStorage Google Cloud Storage implements imgixset.Storage interface
type GCloudStorage struct {
	BaseDir      string
	PathPrefix   string
	ACL          string
	CacheControl string
	SafeChars    string
	Expiration   time.Duration
	Bucket       string

	client       *storage.Client
	shouldEscape func(c byte) bool
}

func New(client *storage.Client, bucket string, options ...Option) *GCloudStorage {
	s := &GCloudStorage{client: client, Bucket: bucket}
	for _, option := range options {
		option(s)
	}
	s.shouldEscape = ixurl.NewSafeChars(s.SafeChars)
	return s
}

func (s *GCloudStorage) Get(ctx context.Context, key string) (*imgixset.Blob, error) {
	attrs, err := s.attrs(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.Expiration > 0 && time.Since(attrs.Updated) > s.Expiration {
		return nil, imgixset.ErrExpired
	}
	reader, err := s.client.Bucket(s.Bucket).Object(attrs.Name).NewReader(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	defer func() {
		_ = reader.Close()
	}()
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return imgixset.NewBlobFromBytes(buf), nil
}

func (s *GCloudStorage) Put(ctx context.Context, key string, blob *imgixset.Blob) error {
	key, ok := s.Path(key)
	if !ok {
		return imgixset.ErrInvalid
	}
	reader, _, err := blob.NewReader()
	if err != nil {
		return err
	}
	defer func() {
		_ = reader.Close()
	}()
	writer := s.client.Bucket(s.Bucket).Object(key).NewWriter(ctx)
	if s.ACL != "" {
		writer.PredefinedACL = s.ACL
	}
	writer.ContentType = blob.ContentType()
	writer.CacheControl = s.CacheControl
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func (s *GCloudStorage) Delete(ctx context.Context, key string) error {
	key, ok := s.Path(key)
	if !ok {
		return imgixset.ErrInvalid
	}
	return wrapNotFound(s.client.Bucket(s.Bucket).Object(key).Delete(ctx))
}

// Path transforms and validates key for storage object name
func (s *GCloudStorage) Path(key string) (string, bool) {
	key = "/" + ixurl.NormalizeKey(key, s.shouldEscape)
	if !strings.HasPrefix(key, s.PathPrefix) {
		return "", false
	}
	joinedPath := filepath.Join(s.BaseDir, strings.TrimPrefix(key, s.PathPrefix))
	// object names do not start with "/"
	return strings.Trim(joinedPath, "/"), true
}

func (s *GCloudStorage) attrs(ctx context.Context, key string) (*storage.ObjectAttrs, error) {
	key, ok := s.Path(key)
	if !ok {
		return nil, imgixset.ErrInvalid
	}
	attrs, err := s.client.Bucket(s.Bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return attrs, nil
}

func (s *GCloudStorage) Stat(ctx context.Context, key string) (*imgixset.Stat, error) {
	attrs, err := s.attrs(ctx, key)
	if err != nil {
		return nil, err
	}
	return &imgixset.Stat{
		Size:         attrs.Size,
		ETag:         attrs.Etag,
		ModifiedTime: attrs.Updated,
	}, nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return imgixset.ErrNotFound
	}
	return err
}
