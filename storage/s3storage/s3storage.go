package s3storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/ixurl"
)

// S3Storage AWS S3 Storage implements imgixset.Storage interface
type S3Storage struct {
	Client *s3.Client
	Bucket string

	BaseDir        string
	PathPrefix     string
	ACL            string
	CacheControl   string
	SafeChars      string
	StorageClass   string
	Endpoint       string
	ForcePathStyle bool
	Expiration     time.Duration

	shouldEscape func(c byte) bool
}

// New creates S3Storage
func New(cfg aws.Config, bucket string, options ...Option) *S3Storage {
	baseDir := "/"
	if idx := strings.Index(bucket, "/"); idx > -1 {
		baseDir = bucket[idx:]
		bucket = bucket[:idx]
	}
	s := &S3Storage{
		Bucket: bucket,

		BaseDir:      baseDir,
		PathPrefix:   "/",
		ACL:          string(types.ObjectCannedACLPublicRead),
		StorageClass: string(types.StorageClassStandard),
	}
	for _, option := range options {
		option(s)
	}
	s.Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.ForcePathStyle
	})
	// https://docs.aws.amazon.com/AmazonS3/latest/userguide/object-keys.html#object-key-guidelines-safe-characters
	if s.SafeChars == "--" {
		s.shouldEscape = ixurl.NewSafeChars("--")
	} else {
		s.shouldEscape = ixurl.NewSafeChars("!\"()*" + s.SafeChars)
	}
	return s
}

// Path transforms and validates key for storage path
func (s *S3Storage) Path(key string) (string, bool) {
	key = "/" + ixurl.NormalizeKey(key, s.shouldEscape)
	if !strings.HasPrefix(key, s.PathPrefix) {
		return "", false
	}
	return filepath.Join(s.BaseDir, strings.TrimPrefix(key, s.PathPrefix)), true
}

// Get implements imgixset.Storage interface
func (s *S3Storage) Get(ctx context.Context, key string) (*imgixset.Blob, error) {
	key, ok := s.Path(key)
	if !ok {
		return nil, imgixset.ErrInvalid
	}
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapNotFound(err)
	}
	defer func() {
		_ = out.Body.Close()
	}()
	if s.Expiration > 0 && out.LastModified != nil &&
		time.Since(*out.LastModified) > s.Expiration {
		return nil, imgixset.ErrExpired
	}
	buf, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	return imgixset.NewBlobFromBytes(buf), nil
}

// Put implements imgixset.Storage interface
func (s *S3Storage) Put(ctx context.Context, key string, blob *imgixset.Blob) error {
	key, ok := s.Path(key)
	if !ok {
		return imgixset.ErrInvalid
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return err
	}
	var cacheControl *string
	if s.CacheControl != "" {
		cacheControl = aws.String(s.CacheControl)
	}
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		ACL:           types.ObjectCannedACL(s.ACL),
		Body:          bytes.NewReader(buf),
		Bucket:        aws.String(s.Bucket),
		CacheControl:  cacheControl,
		ContentType:   aws.String(blob.ContentType()),
		ContentLength: aws.Int64(int64(len(buf))),
		Key:           aws.String(key),
		StorageClass:  types.StorageClass(s.StorageClass),
	})
	return err
}

// Delete implements imgixset.Storage interface.
// Deleting a missing key is not an error on S3.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key, ok := s.Path(key)
	if !ok {
		return imgixset.ErrInvalid
	}
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// Stat implements imgixset.Storage interface
func (s *S3Storage) Stat(ctx context.Context, key string) (*imgixset.Stat, error) {
	key, ok := s.Path(key)
	if !ok {
		return nil, imgixset.ErrInvalid
	}
	head, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapNotFound(err)
	}
	stat := &imgixset.Stat{
		Size: aws.ToInt64(head.ContentLength),
		ETag: aws.ToString(head.ETag),
	}
	if head.LastModified != nil {
		stat.ModifiedTime = *head.LastModified
	}
	return stat, nil
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func wrapNotFound(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return imgixset.ErrNotFound
	}
	var sc httpStatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() == http.StatusNotFound {
		return imgixset.ErrNotFound
	}
	return err
}
