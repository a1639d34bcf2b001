package gcloudstorage

import (
	"strings"
	"time"
)

// Option GCloudStorage option
type Option func(s *GCloudStorage)

// WithBaseDir with object name prefix within the bucket
func WithBaseDir(baseDir string) Option {
	return func(s *GCloudStorage) {
		if dir := strings.Trim(baseDir, "/"); dir != "" {
			s.BaseDir = dir
		}
	}
}

// WithPathPrefix with path prefix that keys must fall under
func WithPathPrefix(prefix string) Option {
	return func(s *GCloudStorage) {
		if prefix == "" {
			return
		}
		if prefix = strings.Trim(prefix, "/"); prefix == "" {
			s.PathPrefix = "/"
		} else {
			s.PathPrefix = "/" + prefix + "/"
		}
	}
}

// WithACL with predefined ACL of published objects, e.g. "publicRead"
func WithACL(acl string) Option {
	return func(s *GCloudStorage) {
		s.ACL = acl
	}
}

// WithCacheControl with Cache-Control metadata of published objects,
// served by the bucket to manifest consumers
func WithCacheControl(cacheControl string) Option {
	return func(s *GCloudStorage) {
		s.CacheControl = cacheControl
	}
}

func WithSafeChars(chars string) Option {
	return func(s *GCloudStorage) {
		if chars != "" {
			s.SafeChars = chars
		}
	}
}

// WithExpiration with age after which Get reports objects expired
func WithExpiration(exp time.Duration) Option {
	return func(s *GCloudStorage) {
		if exp > 0 {
			s.Expiration = exp
		}
	}
}
